package saves

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	errs "gamesave/internal/errors"
	"gamesave/internal/httpresponse"
	"gamesave/internal/usecase/loader"
	savesuc "gamesave/internal/usecase/saves"
	"gamesave/internal/utils"
)

type SaveHandler struct {
	log    *zap.SugaredLogger
	saveUC *savesuc.SaveUseCase
	hub    *ProgressHub
}

func NewSaveHandler(log *zap.SugaredLogger, saveUC *savesuc.SaveUseCase, hub *ProgressHub) *SaveHandler {
	if hub == nil {
		hub = NewProgressHub(log)
	}
	return &SaveHandler{log: log, saveUC: saveUC, hub: hub}
}

func (h *SaveHandler) Routes(r chi.Router) {
	r.Get("/saves", h.HandleListSlots)
	r.Get("/saves/{slot}", h.HandleDescribe)
	r.Post("/saves/{slot}", h.HandleSave)
	r.Delete("/saves/{slot}", h.HandleDelete)
	r.Get("/saves/{slot}/thumbnail", h.HandleThumbnail)
	r.Get("/saves/{slot}/tree", h.HandleInspect)
	r.Post("/saves/{slot}/load", h.HandleLoad)
	r.Get("/session/vars", h.HandleVars)
	r.Get("/ws/progress", h.hub.Serve)
}

type SaveRequest struct {
	Entrance   int32  `json:"entrance"`
	PlaytimeMs int64  `json:"playtime_ms"`
	Thumbnail  string `json:"thumbnail,omitempty"` // base64 PNG
}

type LoadRequest struct {
	// SkipSwitch cancels the scene switch at the first preload checkpoint.
	SkipSwitch bool `json:"skip_switch"`
}

type LoadResponse struct {
	*loader.Result
	State string   `json:"state"`
	Trace []string `json:"trace"`
}

func newLoadResponse(res *loader.Result) LoadResponse {
	resp := LoadResponse{Result: res, State: res.State.String()}
	for _, s := range res.Trace {
		resp.Trace = append(resp.Trace, s.String())
	}
	return resp
}

func (h *SaveHandler) HandleListSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.saveUC.ListSlots(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, slots)
}

func (h *SaveHandler) HandleDescribe(w http.ResponseWriter, r *http.Request) {
	sum, err := h.saveUC.Describe(r.Context(), chi.URLParam(r, "slot"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, sum)
}

func (h *SaveHandler) HandleThumbnail(w http.ResponseWriter, r *http.Request) {
	img, err := h.saveUC.Thumbnail(r.Context(), chi.URLParam(r, "slot"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if img == nil {
		httpresponse.WriteErrorWithStatus(w, http.StatusNotFound, "save has no thumbnail")
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		h.log.Errorw("Failed to encode thumbnail", zap.Error(err))
		httpresponse.WriteInternalErrorResponse(w)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}

func (h *SaveHandler) HandleInspect(w http.ResponseWriter, r *http.Request) {
	insp, err := h.saveUC.Inspect(r.Context(), chi.URLParam(r, "slot"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, insp)
}

func (h *SaveHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		h.log.Warnw("Bad save request", zap.Error(err))
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	var thumb image.Image
	if req.Thumbnail != "" {
		raw, err := base64.StdEncoding.DecodeString(req.Thumbnail)
		if err == nil {
			thumb, err = png.Decode(bytes.NewReader(raw))
		}
		if err != nil {
			httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, "thumbnail must be a base64 PNG")
			return
		}
	}

	sum, err := h.saveUC.Save(r.Context(), chi.URLParam(r, "slot"), req.Entrance,
		time.Duration(req.PlaytimeMs)*time.Millisecond, thumb)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusCreated, sum)
}

func (h *SaveHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.saveUC.Delete(r.Context(), chi.URLParam(r, "slot")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleLoad restores a slot into the session. Preload checkpoints are
// broadcast on /ws/progress under the load id returned here.
func (h *SaveHandler) HandleLoad(w http.ResponseWriter, r *http.Request) {
	var req LoadRequest
	if r.ContentLength != 0 {
		if err := utils.DecodeJSONRequest(r, &req); err != nil {
			httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	slot := chi.URLParam(r, "slot")
	id := uuid.New()
	preload := func(item loader.PreloadItem, percent int) bool {
		h.hub.Broadcast(ProgressEvent{
			Type:    EventPreload,
			LoadID:  id,
			Slot:    slot,
			Percent: percent,
			Item:    &item,
		})
		return !req.SkipSwitch
	}

	res, err := h.saveUC.LoadWithID(r.Context(), id, slot, preload)

	ev := ProgressEvent{Type: EventResult, LoadID: id, Slot: slot, State: res.State.String()}
	if err != nil {
		ev.Error = err.Error()
	}
	h.hub.Broadcast(ev)

	if err != nil {
		h.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, newLoadResponse(res))
}

func (h *SaveHandler) HandleVars(w http.ResponseWriter, r *http.Request) {
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, h.saveUC.Vars())
}

func (h *SaveHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrSlotNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrBadSlotName):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrLoadCancelled):
		status = http.StatusConflict
	case errs.Classify(err) == errs.ClassRecoverable:
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		h.log.Errorw("Request failed", zap.Error(err))
	}
	httpresponse.WriteErrorWithStatus(w, status, err.Error())
}
