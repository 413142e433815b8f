package models

import (
	"encoding/json"
	"time"
)

// RoomStatus is the lifecycle state of a room
type RoomStatus string

const (
	RoomStatusCreated              RoomStatus = "created"
	RoomStatusAwaitingChannel      RoomStatus = "awaiting_channel"
	RoomStatusAbortedNoCategory    RoomStatus = "aborted_no_category"
	RoomStatusAbortedNoFreeChannel RoomStatus = "aborted_no_free_channel"
	RoomStatusVisibilityGranted    RoomStatus = "visibility_granted"
	RoomStatusVotingOpen           RoomStatus = "voting_open"
	RoomStatusTeamsAssigned        RoomStatus = "teams_assigned"
	RoomStatusActive               RoomStatus = "active"
	RoomStatusExpirySoonWarned     RoomStatus = "expiry_soon_warned"
	RoomStatusExpired              RoomStatus = "expired"
	RoomStatusClosed               RoomStatus = "closed"
)

// RoomState is the serializable state of one room, used for snapshots and
// crash recovery.
type RoomState struct {
	// ID is the unique identifier for the room
	ID string

	// Players is the finalized lineup, decoupled from the queue
	Players []*Player

	// Ladder is the pool the lineup was drawn from
	Ladder Ladder

	// ChannelID is the room channel binding, empty until one is obtained
	ChannelID string

	// StartTime is when the room was formed
	StartTime time.Time

	// ExpirationTime is when player access lapses
	ExpirationTime time.Time

	// ExpirationWarned is set once the one-shot expiry warning has been sent
	ExpirationWarned bool

	// Votes holds the recorded tally once voting has finished
	Votes map[Format][]string

	// WinningFormat is the elected format, empty while voting is open
	WinningFormat Format

	// Teams is the assigned team split, nil until voting has finished
	Teams [][]*Player

	// HostOrder is the rendered host serving order
	HostOrder string

	// VisibilityGranted records that players were granted channel access
	VisibilityGranted bool

	// VoteFinished records that the format vote completed
	VoteFinished bool

	// Finished records that the room was torn down
	Finished bool

	// Status is the lifecycle state the room was in at snapshot time
	Status RoomStatus
}

// Snapshot is a point-in-time capture of all engine state that survives a
// restart.
type Snapshot struct {
	// QueueChannels maps each ladder to the channels queueing is allowed in
	QueueChannels map[Ladder][]string

	// Categories maps each ladder to its room-channel category binding
	Categories map[Ladder]string

	// Queues holds the queued groups per ladder, preserving group membership
	// and queue order
	Queues map[Ladder][][]*Player

	// Rooms holds every room that had not finished at snapshot time
	Rooms []*RoomState
}

func (s Snapshot) MarshalBinary() ([]byte, error) {
	return json.Marshal(s)
}

func (s *Snapshot) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, s)
}
