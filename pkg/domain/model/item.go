package model

import "time"

// MemoryItem is a consolidated fact, preference or summary returned by
// namespace retrieval. Items are produced asynchronously by the store's
// consolidation process and are read-only in this layer; they may lag behind
// the live conversation.
type MemoryItem struct {
	Namespace string
	Text      string
	Score     float64 // descending relevance, store-assigned
	CreatedAt time.Time
}
