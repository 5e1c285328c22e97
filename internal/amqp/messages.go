package amqp

import (
	"encoding/json"
	"time"
)

// TradeSyncMessage is the lightweight message published after a trade is
// written locally. It carries only identifiers; the worker fetches the
// full record from the database.
type TradeSyncMessage struct {
	TradeID   string    `json:"tradeId"`
	Month     string    `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTradeSyncMessage creates a sync message for a trade and its month key
func NewTradeSyncMessage(tradeID, month string) *TradeSyncMessage {
	return &TradeSyncMessage{
		TradeID:   tradeID,
		Month:     month,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TradeSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TradeSyncMessageFromJSON creates a message from JSON bytes
func TradeSyncMessageFromJSON(data []byte) (*TradeSyncMessage, error) {
	var msg TradeSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
