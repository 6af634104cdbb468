package server

import (
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/L1TangDingZhen/BOX-P/pkg/buildinfo"
	"github.com/L1TangDingZhen/BOX-P/pkg/errors"
	"github.com/L1TangDingZhen/BOX-P/pkg/geom"
	"github.com/L1TangDingZhen/BOX-P/pkg/render/nodelink"
	"github.com/L1TangDingZhen/BOX-P/pkg/session"
	"github.com/L1TangDingZhen/BOX-P/pkg/spatial"
	"github.com/L1TangDingZhen/BOX-P/pkg/stratify"
	"github.com/L1TangDingZhen/BOX-P/pkg/task"
)

// SessionInfo describes a stored session.
type SessionInfo struct {
	ID          string     `json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	Container   task.XYZ   `json:"container"`
	Boxes       int        `json:"boxes"`
	NextID      string     `json:"next_id"`
	Utilization float64    `json:"utilization"`
	Task        *task.Task `json:"task,omitempty"`
}

// Rejection is a task item that could not be placed during import.
type Rejection struct {
	OrderID int         `json:"order_id"`
	Name    string      `json:"name,omitempty"`
	Error   errors.Code `json:"error"`
	Message string      `json:"message"`
}

// ImportResponse is returned by POST /api/sessions/import.
type ImportResponse struct {
	Session  SessionInfo   `json:"session"`
	Placed   []task.Placed `json:"placed"`
	Rejected []Rejection   `json:"rejected"`
}

// LayersResponse is returned by GET /api/sessions/{id}/layers.
type LayersResponse struct {
	Mode   string           `json:"mode"`
	Layers []stratify.Layer `json:"layers"`
}

type createRequest struct {
	Container *task.XYZ `json:"container,omitempty"`
}

func notFound(format string, args ...any) error {
	return errors.New(errors.ErrCodeNotFound, format, args...)
}

func info(e *session.Entry, sess *session.Session, withTask bool) SessionInfo {
	c := sess.Container()
	si := SessionInfo{
		ID:          e.ID,
		CreatedAt:   e.CreatedAt,
		Container:   task.XYZ{X: c.X, Y: c.Y, Z: c.Z},
		Boxes:       sess.Len(),
		NextID:      sess.NextID(),
		Utilization: sess.Utilization(),
	}
	if withTask {
		si.Task = task.FromSession(sess, 0)
	}
	return si
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  buildinfo.Resolved(),
		"sessions": s.store.Len(),
	})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.opts.Stats.Snapshot())
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	out := []SessionInfo{}
	for _, e := range s.store.List() {
		_ = e.Do(func(sess *session.Session) error {
			out = append(out, info(e, sess, false))
			return nil
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeJSON(w, r, &req); err != nil && !stderrors.Is(err, io.EOF) {
		writeError(w, r, s.logger, err)
		return
	}

	opts := s.newSessionOptions()
	if req.Container != nil {
		opts.Container = geom.Container{X: req.Container.X, Y: req.Container.Y, Z: req.Container.Z}
		// The zero container means "default" to session.New; reject it here.
		if err := opts.Container.Validate(); err != nil {
			writeError(w, r, s.logger, err)
			return
		}
	}

	e, err := s.store.Create(opts)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	var si SessionInfo
	_ = e.Do(func(sess *session.Session) error {
		si = info(e, sess, true)
		return nil
	})
	s.logger.Info("session created", "id", e.ID, "container", opts.Container)
	writeJSON(w, http.StatusCreated, si)
}

func (s *Server) importSession(w http.ResponseWriter, r *http.Request) {
	t, err := task.ReadJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	sess, rep, err := task.NewSession(t, s.newSessionOptions())
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	e := s.store.Add(sess)

	resp := ImportResponse{Placed: rep.Placed, Rejected: make([]Rejection, len(rep.Rejected))}
	for i, rej := range rep.Rejected {
		resp.Rejected[i] = Rejection{
			OrderID: rej.OrderID,
			Name:    rej.Name,
			Error:   rej.Code(),
			Message: errors.UserMessage(rej.Err),
		}
	}
	_ = e.Do(func(sess *session.Session) error {
		resp.Session = info(e, sess, false)
		return nil
	})
	s.logger.Info("session imported", "id", e.ID, "placed", len(rep.Placed), "rejected", len(rep.Rejected))
	writeJSON(w, http.StatusCreated, resp)
}

// withSession resolves {id} and runs fn under the session's lock.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*session.Entry, *session.Session) error) {
	e, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if err := e.Do(func(sess *session.Session) error { return fn(e, sess) }); err != nil {
		writeError(w, r, s.logger, err)
	}
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(_ *session.Entry, sess *session.Session) error {
		writeJSON(w, http.StatusOK, task.FromSession(sess, 0))
		return nil
	})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(id); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	s.logger.Info("session deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) placeBox(w http.ResponseWriter, r *http.Request) {
	var it task.Item
	if err := decodeJSON(w, r, &it); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	s.withSession(w, r, func(_ *session.Entry, sess *session.Session) error {
		b, err := sess.TryPlace(it.Candidate())
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusCreated, b)
		return nil
	})
}

func (s *Server) removeBox(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(_ *session.Entry, sess *session.Session) error {
		if err := sess.Remove(chi.URLParam(r, "boxID")); err != nil {
			return err
		}
		w.WriteHeader(http.StatusNoContent)
		return nil
	})
}

func (s *Server) resizeContainer(w http.ResponseWriter, r *http.Request) {
	var xyz task.XYZ
	if err := decodeJSON(w, r, &xyz); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	s.withSession(w, r, func(e *session.Entry, sess *session.Session) error {
		if err := sess.Resize(geom.Container{X: xyz.X, Y: xyz.Y, Z: xyz.Z}); err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, info(e, sess, false))
		return nil
	})
}

// layerQuery reads ?mode=, ?keep_empty= and ?min_layers= on top of the
// session's own layering options.
func layerQuery(r *http.Request, opts stratify.Options) (stratify.Options, error) {
	q := r.URL.Query()
	if v := q.Get("mode"); v != "" {
		mode, err := stratify.ParseMode(v)
		if err != nil {
			return opts, err
		}
		opts.Mode = mode
	}
	if v := q.Get("keep_empty"); v != "" {
		keep, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "keep_empty")
		}
		opts.KeepEmpty = keep
	}
	if v := q.Get("min_layers"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "min_layers must be a non-negative integer")
		}
		opts.MinLayers = n
	}
	return opts, nil
}

func (s *Server) layers(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	switch format {
	case "", "json", "dot", "svg":
	default:
		writeError(w, r, s.logger, errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want json, dot or svg)", format))
		return
	}

	var (
		ok     bool
		mode   stratify.Mode
		boxes  []spatial.Box
		layers []stratify.Layer
	)
	s.withSession(w, r, func(_ *session.Entry, sess *session.Session) error {
		opts, err := layerQuery(r, sess.Layers())
		if err != nil {
			return err
		}
		mode, boxes, ok = opts.Mode, sess.Boxes(), true
		if format == "" || format == "json" {
			layers = sess.StratifyWith(opts)
		}
		return nil
	})
	if !ok {
		return
	}

	switch format {
	case "dot", "svg":
		dot := nodelink.ToDOT(stratify.Graph(boxes, mode, true), nodelink.Options{Detailed: true})
		if format == "dot" {
			w.Header().Set("Content-Type", "text/vnd.graphviz")
			_, _ = io.WriteString(w, dot)
			return
		}
		svg, hit, err := nodelink.RenderSVGCached(r.Context(), s.cache, dot, 0)
		if err != nil {
			writeError(w, r, s.logger, errors.Wrap(errors.ErrCodeInternal, err, "render svg"))
			return
		}
		if hit {
			w.Header().Set("X-Cache", "HIT")
		} else {
			w.Header().Set("X-Cache", "MISS")
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(svg)
	default:
		writeJSON(w, http.StatusOK, LayersResponse{Mode: mode.String(), Layers: layers})
	}
}
