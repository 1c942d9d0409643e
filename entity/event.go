package entity

// Actions carried by the `action` field of inbound socket events.
const (
	ActionJoinRoom      = "join_room"
	ActionSupportUpdate = "support_update"
	ActionMessage       = "message"
	ActionTyping        = "typing"
	ActionOnlineUser    = "onlineUser"
)

// ChatEvent is the inbound wire shape of a socket event. Only the fields
// relevant to the given action are populated; everything else stays zero.
type ChatEvent struct {
	Action     string `json:"action"`
	RoomID     string `json:"roomId"`
	Message    string `json:"message"`
	User       string `json:"user"`
	UserID     string `json:"userId"`
	FromUpload bool   `json:"fromUpload"`
	UserName   string `json:"userName"`
	UserImage  string `json:"userImage"`
	Image      string `json:"image"`
	File       string `json:"file"`
	FileName   string `json:"fileName"`
	FileType   string `json:"fileType"`
	FileSize   int64  `json:"fileSize"`
	Kind       string `json:"type"`
}

// Envelope wraps every outbound socket payload.
type Envelope struct {
	Type    string `json:"type"` // always "chat_message"
	Message any    `json:"message"`
}

// EnvelopeType is the only value of Envelope.Type.
const EnvelopeType = "chat_message"

// MessagePayload is the action-specific object delivered for `message` events.
type MessagePayload struct {
	Action    string `json:"action"`
	User      string `json:"user,omitempty"`
	UserID    string `json:"userId"`
	RoomID    string `json:"roomId"`
	Message   string `json:"message"`
	ChatType  string `json:"chatType,omitempty"`
	UserName  string `json:"userName,omitempty"`
	UserImage string `json:"userImage,omitempty"`
	Timestamp string `json:"timestamp"`
	Image     string `json:"image,omitempty"`
	File      string `json:"file,omitempty"`
	FileName  string `json:"fileName,omitempty"`
	FileType  string `json:"fileType,omitempty"`
	FileSize  int64  `json:"fileSize,omitempty"`
	Kind      string `json:"type,omitempty"`
}

// PresencePayload is the full online-user snapshot broadcast on every
// join/leave.
type PresencePayload struct {
	Action   string   `json:"action"` // "onlineUser"
	UserList []string `json:"userList"`
}

// SupportUpdatePayload notifies agents that a support room changed state.
type SupportUpdatePayload struct {
	Action string `json:"action"` // "support_update"
	RoomID string `json:"roomId"`
}
