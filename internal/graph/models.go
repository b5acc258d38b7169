package graph

// NodeID is a namespaced node key. Use the constructors below so user, device
// and actor identifiers never collide.
type NodeID string

const (
	userPrefix   = "user:"
	devicePrefix = "device:"
	actorPrefix  = "actor:"
)

// UserNode returns the key for a marketplace user.
func UserNode(userID string) NodeID { return NodeID(userPrefix + userID) }

// DeviceNode returns the key for a device fingerprint.
func DeviceNode(fingerprint string) NodeID { return NodeID(devicePrefix + fingerprint) }

// ActorNode returns the key for an externally known bad actor.
func ActorNode(actorID string) NodeID { return NodeID(actorPrefix + actorID) }

// Kind is stored per node and drives feature categorization.
type Kind string

const (
	KindUser         Kind = "user"
	KindDevice       Kind = "device"
	KindFlaggedActor Kind = "flagged_actor"
)

// Tag labels an edge with the interaction that created it.
type Tag string

const (
	TagNone        Tag = ""
	TagDeviceLink  Tag = "device_link"
	TagReview      Tag = "review"
	TagFlaggedLink Tag = "flagged_link"
)

// Ref names a node together with the kind it gets if it has to be created.
type Ref struct {
	ID   NodeID
	Kind Kind
}

// User is a Ref for a user node.
func User(userID string) Ref { return Ref{ID: UserNode(userID), Kind: KindUser} }

// Device is a Ref for a device node.
func Device(fingerprint string) Ref { return Ref{ID: DeviceNode(fingerprint), Kind: KindDevice} }

// FlaggedActor is a Ref for a flagged actor node.
func FlaggedActor(actorID string) Ref { return Ref{ID: ActorNode(actorID), Kind: KindFlaggedActor} }

// Neighbor is one adjacency entry as seen from a node.
type Neighbor struct {
	ID   NodeID
	Kind Kind
	Tag  Tag
}

// Stats summarizes the graph size.
type Stats struct {
	Nodes       int          `json:"nodes"`
	Edges       int          `json:"edges"`
	NodesByKind map[Kind]int `json:"nodes_by_kind"`
}
