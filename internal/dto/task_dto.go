package dto

// PhotoTaskMessage is the payload published to the extraction topic for
// every accepted photo event.
type PhotoTaskMessage struct {
	ChatId int64       `json:"chat_id"`
	Photos []PhotoSize `json:"photos"`
}
