package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/clydefs/clydefs/pkg/clyerr"
	"github.com/clydefs/clydefs/pkg/codec"
	"github.com/clydefs/clydefs/pkg/itbl"
	"github.com/clydefs/clydefs/pkg/treeiface"
)

// Handlers exposes the engine's tree-interface ABI (pkg/treeiface) and
// directory layer (pkg/itbl) over HTTP, for local inspection and
// scripted poking rather than as a production filesystem protocol
// (spec's Non-goals rule out a real mount path; this surface is the
// debug substitute).
type Handlers struct {
	tree    treeiface.Interface
	lister  treeiface.TreeLister
	metrics *Metrics
}

// NewHandlers builds a Handlers bound to tree. lister may be nil, in
// which case the stats endpoint omits the tid listing.
func NewHandlers(tree treeiface.Interface, lister treeiface.TreeLister, metrics *Metrics) *Handlers {
	return &Handlers{tree: tree, lister: lister, metrics: metrics}
}

func httpStatus(err error) int {
	switch {
	case clyerr.Is(err, clyerr.NoSuchTree), clyerr.Is(err, clyerr.NoSuchNode):
		return http.StatusNotFound
	case clyerr.Is(err, clyerr.Busy):
		return http.StatusConflict
	case clyerr.Is(err, clyerr.AllocFailed):
		return http.StatusInsufficientStorage
	case err == clyerr.ErrOutOfRange:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// HandleHealth responds 200 unconditionally once the process is
// serving; readiness beyond "the HTTP server is up" isn't meaningful
// for an in-memory engine with no external dependencies to probe.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleStats reports the engine's current registered-tree count and,
// when the bound implementation supports enumeration, the live tids.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{}
	if cap, ok := h.tree.(treeiface.PayloadCapacity); ok {
		resp.PayloadCapacity = cap.Capacity()
	}
	if h.lister != nil {
		resp.Tids = h.lister.ListTrees()
		resp.RegisteredTrees = len(resp.Tids)
	}
	sendSuccess(w, http.StatusOK, resp)
}

// HandleCreateTree creates a tree with the requested split threshold
// (defaulting to config.K when the body is empty or omits it).
func (h *Handlers) HandleCreateTree(w http.ResponseWriter, r *http.Request) {
	var req CreateTreeRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			sendError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if req.K == 0 {
		req.K = 32
	}
	tid, err := h.tree.TreeCreate(req.K)
	if err != nil {
		sendError(w, httpStatus(err), err.Error())
		return
	}
	if h.metrics != nil {
		h.metrics.TreesCreated.Inc()
	}
	sendSuccess(w, http.StatusCreated, CreateTreeResponse{Tid: tid})
}

// HandleRemoveTree removes the tree named by the {tid} path parameter.
func (h *Handlers) HandleRemoveTree(w http.ResponseWriter, r *http.Request) {
	tid, err := parseUint(chi.URLParam(r, "tid"))
	if err != nil {
		sendError(w, http.StatusBadRequest, "invalid tid")
		return
	}
	if err := h.tree.TreeRemove(tid); err != nil {
		sendError(w, httpStatus(err), err.Error())
		return
	}
	if h.metrics != nil {
		h.metrics.TreesRemoved.Inc()
	}
	sendSuccess(w, http.StatusOK, nil)
}

// HandleInsertNode allocates a fresh node under {tid}.
func (h *Handlers) HandleInsertNode(w http.ResponseWriter, r *http.Request) {
	tid, err := parseUint(chi.URLParam(r, "tid"))
	if err != nil {
		sendError(w, http.StatusBadRequest, "invalid tid")
		return
	}
	nid, err := h.tree.NodeInsert(tid)
	if err != nil {
		sendError(w, httpStatus(err), err.Error())
		return
	}
	sendSuccess(w, http.StatusCreated, CreateNodeResponse{Nid: nid})
}

// HandleRemoveNode removes {nid} from {tid}.
func (h *Handlers) HandleRemoveNode(w http.ResponseWriter, r *http.Request) {
	tid, nid, err := parseTidNid(r)
	if err != nil {
		sendError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.tree.NodeRemove(tid, nid); err != nil {
		sendError(w, httpStatus(err), err.Error())
		return
	}
	sendSuccess(w, http.StatusOK, nil)
}

// nodeIOBody is the JSON body shared by the read and write node
// endpoints: payload bytes travel base64-encoded over JSON.
type nodeIOBody struct {
	Offset uint64 `json:"offset"`
	Length uint64 `json:"length"`
	Data   string `json:"data,omitempty"`
}

// HandleReadNode reads {length} bytes at {offset} from {nid}'s payload.
func (h *Handlers) HandleReadNode(w http.ResponseWriter, r *http.Request) {
	tid, nid, err := parseTidNid(r)
	if err != nil {
		sendError(w, http.StatusBadRequest, err.Error())
		return
	}
	var body nodeIOBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	dst := make([]byte, body.Length)
	if err := h.tree.NodeRead(tid, nid, body.Offset, body.Length, dst); err != nil {
		sendError(w, httpStatus(err), err.Error())
		return
	}
	sendSuccess(w, http.StatusOK, nodeIOBody{
		Offset: body.Offset,
		Length: body.Length,
		Data:   base64.StdEncoding.EncodeToString(dst),
	})
}

// HandleWriteNode writes base64-decoded body.Data at body.Offset into
// {nid}'s payload.
func (h *Handlers) HandleWriteNode(w http.ResponseWriter, r *http.Request) {
	tid, nid, err := parseTidNid(r)
	if err != nil {
		sendError(w, http.StatusBadRequest, err.Error())
		return
	}
	var body nodeIOBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	src, err := base64.StdEncoding.DecodeString(body.Data)
	if err != nil {
		sendError(w, http.StatusBadRequest, "data is not valid base64")
		return
	}
	if err := h.tree.NodeWrite(tid, nid, body.Offset, uint64(len(src)), src); err != nil {
		sendError(w, httpStatus(err), err.Error())
		return
	}
	if h.metrics != nil {
		h.metrics.BytesWritten.Add(float64(len(src)))
	}
	sendSuccess(w, http.StatusOK, nil)
}

// HandleListDir lists every entry of the directory rooted at ({tid},
// {nid}).
func (h *Handlers) HandleListDir(w http.ResponseWriter, r *http.Request) {
	tid, nid, err := parseTidNid(r)
	if err != nil {
		sendError(w, http.StatusBadRequest, err.Error())
		return
	}
	dir := itbl.Open(h.tree, tid, nid)
	entries, err := dir.List()
	if err != nil {
		sendError(w, httpStatus(err), err.Error())
		return
	}
	views := make([]DirEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, DirEntryView{
			Name:         e.NameString(),
			Ino:          e.Ino,
			Mode:         e.Mode,
			Size:         e.Size,
			ChildItblTid: e.ChildItblTid,
			ChildItblNid: e.ChildItblNid,
		})
	}
	sendSuccess(w, http.StatusOK, views)
}

// HandleFindDirEntry resolves {name} inside the directory rooted at
// ({tid}, {nid}).
func (h *Handlers) HandleFindDirEntry(w http.ResponseWriter, r *http.Request) {
	tid, nid, err := parseTidNid(r)
	if err != nil {
		sendError(w, http.StatusBadRequest, err.Error())
		return
	}
	name := chi.URLParam(r, "name")
	dir := itbl.Open(h.tree, tid, nid)
	e, _, err := dir.Find(name)
	if err != nil {
		if clyerr.Is(err, clyerr.NoSuchNode) || err == clyerr.ErrNotFound {
			sendError(w, http.StatusNotFound, "entry not found")
			return
		}
		sendError(w, httpStatus(err), err.Error())
		return
	}
	sendSuccess(w, http.StatusOK, DirEntryView{
		Name:         e.NameString(),
		Ino:          e.Ino,
		Mode:         e.Mode,
		Size:         e.Size,
		ChildItblTid: e.ChildItblTid,
		ChildItblNid: e.ChildItblNid,
	})
}

// HandleInsertDirEntry appends a new entry to the directory rooted at
// ({tid}, {nid}).
func (h *Handlers) HandleInsertDirEntry(w http.ResponseWriter, r *http.Request) {
	tid, nid, err := parseTidNid(r)
	if err != nil {
		sendError(w, http.StatusBadRequest, err.Error())
		return
	}
	var view DirEntryView
	if err := json.NewDecoder(r.Body).Decode(&view); err != nil {
		sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	e := &codec.Entry{
		Ino:          view.Ino,
		Mode:         view.Mode,
		Size:         view.Size,
		ChildItblTid: view.ChildItblTid,
		ChildItblNid: view.ChildItblNid,
	}
	if err := e.SetName(view.Name); err != nil {
		sendError(w, http.StatusBadRequest, err.Error())
		return
	}
	dir := itbl.Open(h.tree, tid, nid)
	if _, err := dir.Insert(e); err != nil {
		sendError(w, httpStatus(err), err.Error())
		return
	}
	if h.metrics != nil {
		h.metrics.DirEntriesInserted.Inc()
	}
	sendSuccess(w, http.StatusCreated, view)
}

// HandleDeleteDirEntry removes {name} from the directory rooted at
// ({tid}, {nid}).
func (h *Handlers) HandleDeleteDirEntry(w http.ResponseWriter, r *http.Request) {
	tid, nid, err := parseTidNid(r)
	if err != nil {
		sendError(w, http.StatusBadRequest, err.Error())
		return
	}
	name := chi.URLParam(r, "name")
	dir := itbl.Open(h.tree, tid, nid)
	_, loc, err := dir.Find(name)
	if err != nil {
		sendError(w, http.StatusNotFound, "entry not found")
		return
	}
	if err := dir.Delete(loc); err != nil {
		sendError(w, httpStatus(err), err.Error())
		return
	}
	sendSuccess(w, http.StatusOK, nil)
}

func parseUint(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

func parseTidNid(r *http.Request) (tid, nid uint64, err error) {
	tid, err = parseUint(chi.URLParam(r, "tid"))
	if err != nil {
		return 0, 0, clyerr.New(clyerr.Generic, "invalid tid")
	}
	nid, err = parseUint(chi.URLParam(r, "nid"))
	if err != nil {
		return 0, 0, clyerr.New(clyerr.Generic, "invalid nid")
	}
	return tid, nid, nil
}
