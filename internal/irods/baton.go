package irods

// baton-do wire protocol. Each request is a single JSON envelope on stdin and
// each response a single envelope on stdout, with results under "result" and
// failures under "error".

const (
	opList      = "list"
	opChecksum  = "checksum"
	opMetamod   = "metamod"
	opMetaquery = "metaquery"
	opChmod     = "chmod"
	opRemove    = "rm"
)

// Catalog error codes surfaced by baton.
const (
	codeNoRowsFound         = -808000
	codeFileDoesNotExist    = -310000
	codeObjPathDoesNotExist = -814000
)

type envelope struct {
	Operation string   `json:"operation"`
	Arguments *args    `json:"arguments,omitempty"`
	Target    entity   `json:"target"`
	Result    *result  `json:"result,omitempty"`
	Error     *opError `json:"error,omitempty"`
}

type args struct {
	AVU        bool   `json:"avu,omitempty"`
	ACL        bool   `json:"acl,omitempty"`
	Checksum   bool   `json:"checksum,omitempty"`
	Replicate  bool   `json:"replicate,omitempty"`
	Size       bool   `json:"size,omitempty"`
	Timestamp  bool   `json:"timestamp,omitempty"`
	Contents   bool   `json:"contents,omitempty"`
	Object     bool   `json:"object,omitempty"`
	Collection bool   `json:"collection,omitempty"`
	Operation  string `json:"operation,omitempty"`
	Recurse    bool   `json:"recurse,omitempty"`
	Verify     bool   `json:"verify,omitempty"`
	Force      bool   `json:"force,omitempty"`
	Zone       string `json:"zone,omitempty"`
}

type entity struct {
	Collection string           `json:"collection"`
	DataObject string           `json:"data_object,omitempty"`
	AVUs       []AVU            `json:"avus,omitempty"`
	Access     []Access         `json:"access,omitempty"`
	Replicas   []Replica        `json:"replicates,omitempty"`
	Checksum   string           `json:"checksum,omitempty"`
	Size       int64            `json:"size,omitempty"`
	Timestamps []timestampEntry `json:"timestamps,omitempty"`
	Contents   []entity         `json:"contents,omitempty"`
}

type timestampEntry struct {
	Created   string `json:"created,omitempty"`
	Modified  string `json:"modified,omitempty"`
	Replicate int    `json:"replicates,omitempty"`
}

type result struct {
	Single   *entity  `json:"single,omitempty"`
	Multiple []entity `json:"multiple,omitempty"`
}

type opError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Metadata modification operations.
const (
	metaAdd = "add"
	metaRem = "rem"
)
