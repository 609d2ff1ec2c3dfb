package api

// APIResponse is the standard envelope every debug/inspection endpoint
// responds with.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig configures the debug/inspection HTTP server.
type ServerConfig struct {
	Port   int
	Bind   string
	APIKey string
}

// CreateTreeRequest is the body of POST /api/v1/trees.
type CreateTreeRequest struct {
	K uint8 `json:"k"`
}

// CreateTreeResponse is returned on a successful tree_create.
type CreateTreeResponse struct {
	Tid uint64 `json:"tid"`
}

// CreateNodeResponse is returned on a successful node_insert.
type CreateNodeResponse struct {
	Nid uint64 `json:"nid"`
}

// StatsResponse summarizes the engine's current state.
type StatsResponse struct {
	RegisteredTrees int      `json:"registered_trees"`
	Tids            []uint64 `json:"tids,omitempty"`
	PayloadCapacity int      `json:"payload_capacity"`
}

// DirEntryView is the JSON projection of one directory entry, for the
// directory-listing diagnostic endpoint.
type DirEntryView struct {
	Name         string `json:"name"`
	Ino          uint64 `json:"ino"`
	Mode         uint16 `json:"mode"`
	Size         uint64 `json:"size"`
	ChildItblTid uint64 `json:"child_itbl_tid,omitempty"`
	ChildItblNid uint64 `json:"child_itbl_nid,omitempty"`
}
