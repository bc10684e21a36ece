package loader

// State is a stage of the load pipeline.
type State int

const (
	StateIdle State = iota
	StateHeaderValidated
	StateBlobRead
	StateDeobfuscated
	StateTreeDeserialized
	StateTreeMerged
	StateScenesArraysLoaded
	StatePreloadAborted
	StatePreloadProceeding
	StateSceneSwitching
	StateReady
)

var stateNames = map[State]string{
	StateIdle:               "idle",
	StateHeaderValidated:    "header_validated",
	StateBlobRead:           "blob_read",
	StateDeobfuscated:       "deobfuscated",
	StateTreeDeserialized:   "tree_deserialized",
	StateTreeMerged:         "tree_merged",
	StateScenesArraysLoaded: "scene_arrays_loaded",
	StatePreloadAborted:     "preload_aborted",
	StatePreloadProceeding:  "preload_proceeding",
	StateSceneSwitching:     "scene_switching",
	StateReady:              "ready",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}
