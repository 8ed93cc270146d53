package amqp

import (
	"encoding/json"
	"time"
)

// DatasetSyncMessage asks the export worker to snapshot one user's
// dataset to Google Sheets. It carries only the user id and the dataset
// version; the worker loads the actual data from storage.
type DatasetSyncMessage struct {
	UserID    int64     `json:"user_id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// NewDatasetSyncMessage creates a sync message for a user snapshot
func NewDatasetSyncMessage(userID, version int64) *DatasetSyncMessage {
	return &DatasetSyncMessage{
		UserID:    userID,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *DatasetSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DatasetSyncMessageFromJSON creates a message from JSON bytes
func DatasetSyncMessageFromJSON(data []byte) (*DatasetSyncMessage, error) {
	var msg DatasetSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
