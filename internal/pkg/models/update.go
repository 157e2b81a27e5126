package models

// Update is the inbound webhook envelope. Exactly one of Message or
// CallbackQuery is set.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// Message is an inbound chat message
type Message struct {
	MessageID      int64       `json:"message_id"`
	From           *ChatUser   `json:"from,omitempty"`
	Chat           Chat        `json:"chat"`
	Text           string      `json:"text,omitempty"`
	Voice          *Voice      `json:"voice,omitempty"`
	Photo          []PhotoSize `json:"photo,omitempty"`
	Caption        string      `json:"caption,omitempty"`
	NewChatMembers []ChatUser  `json:"new_chat_members,omitempty"`
	Date           int64       `json:"date"`
}

// Chat identifies the conversation a message belongs to
type Chat struct {
	ID    int64    `json:"id"`
	Type  ChatType `json:"type"`
	Title string   `json:"title,omitempty"`
}

// ChatUser is the platform identity of a message sender
type ChatUser struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// Voice is an inbound voice note
type Voice struct {
	FileID   string `json:"file_id"`
	Duration int    `json:"duration"`
	MimeType string `json:"mime_type,omitempty"`
}

// PhotoSize is one resolution of an inbound photo
type PhotoSize struct {
	FileID string `json:"file_id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// CallbackQuery is an inline button interaction. Data carries an
// opaque action token and ID must be acknowledged.
type CallbackQuery struct {
	ID      string    `json:"id"`
	From    *ChatUser `json:"from,omitempty"`
	Message *Message  `json:"message,omitempty"`
	Data    string    `json:"data"`
}

// InlineKeyboard is a set of inline button rows attached to an
// outbound message
type InlineKeyboard struct {
	Rows [][]InlineButton `json:"inline_keyboard"`
}

// InlineButton is a single inline button. CallbackData must stay
// under 64 bytes.
type InlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}
