package presence

// MessageType names a wire message. Every message is one JSON object in a websocket text
// frame with a "type" field.
type MessageType string

const (
	// TypeIntersect is sent by a client with its current cursor hit point.
	TypeIntersect MessageType = "intersect"
	// TypeInit is sent to a client once, right after it joined a room.
	TypeInit MessageType = "init"
	// TypeData carries the hit points of every member of the receiver's room.
	TypeData MessageType = "data"
	// TypeUserCount is broadcast to all clients whenever the total changes.
	TypeUserCount MessageType = "userCount"
	// TypeUserLeft is sent to the remaining members of a room after a departure.
	TypeUserLeft MessageType = "userLeft"
)

// Intersect is a cursor hit point on the unit sphere plus the click flag in W
// (1 while the button is held, 0 otherwise). The zero value means "no hit".
type Intersect [4]float32

// UserState is one room member as carried by a data message. A data message lists the
// other members of the receiver's room, never the receiver itself.
type UserState struct {
	Room      int       `json:"room"`
	Intersect Intersect `json:"intersect"`
}

// Message is the envelope for every wire message. Fields not used by a type are left
// at their zero value.
type Message struct {
	Type MessageType `json:"type"`

	// intersect
	Intersect *Intersect `json:"intersect,omitempty"`

	// init, data and userLeft
	Room    int `json:"room"`
	Ordinal int `json:"ordinal,omitempty"`

	// init and data
	UserCount int `json:"userCount,omitempty"`

	// userCount
	Count int `json:"count,omitempty"`

	// data and userLeft
	UsersInRoom int         `json:"usersInRoom,omitempty"`
	Users       []UserState `json:"users,omitempty"`
}

// IntersectMessage builds the client to server hit point message.
func IntersectMessage(i Intersect) Message {
	return Message{Type: TypeIntersect, Intersect: &i}
}

func initMessage(room, ordinal, userCount int) Message {
	return Message{Type: TypeInit, Room: room, Ordinal: ordinal, UserCount: userCount}
}

func userCountMessage(count int) Message {
	return Message{Type: TypeUserCount, Count: count}
}

func userLeftMessage(room, usersInRoom int) Message {
	return Message{Type: TypeUserLeft, Room: room, UsersInRoom: usersInRoom}
}

func dataMessage(room, userCount, usersInRoom int, users []UserState) Message {
	return Message{Type: TypeData, Room: room, UserCount: userCount, UsersInRoom: usersInRoom, Users: users}
}
