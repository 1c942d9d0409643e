package entity

// AllModels lists every model the store migrates at startup.
func AllModels() []any {
	return []any{
		&User{},
		&ChatRoom{},
		&RoomMember{},
		&ChatMessage{},
		&ApiKey{},
	}
}
