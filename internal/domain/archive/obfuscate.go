package archive

// Obfuscate applies the save-time byte transform in place. Deobfuscate
// undoes it exactly; neither allocates or fails.
func Obfuscate(data []byte) {
	for i := range data {
		data[i] += byte(i & 0x7F)
	}
}

func Deobfuscate(data []byte) {
	for i := range data {
		data[i] -= byte(i & 0x7F)
	}
}
