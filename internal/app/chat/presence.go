package chat

import (
	"iter"
	"slices"

	"github.com/samber/lo"

	"guildchat/internal/app/user"
)

// Member is one entry of a presence snapshot.
type Member struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// PresenceTable holds the set of users present in each channel and the last
// display name each user announced. A user appears at most once per channel no
// matter how many connections it has joined there.
//
// It is not safe for concurrent use; Hub serializes every call under its lock.
type PresenceTable struct {
	channels map[string]map[string]struct{}
	names    map[string]string
}

// NewPresenceTable returns an empty table.
func NewPresenceTable() *PresenceTable {
	return &PresenceTable{
		channels: make(map[string]map[string]struct{}),
		names:    make(map[string]string),
	}
}

// AddUser marks userID present in channelID and caches displayName for the user.
// An empty displayName keeps the previously cached name; Hub.Join passes the
// handshake name when the join carries none, so it is only empty when neither
// the join nor the credential named the user.
func (p *PresenceTable) AddUser(channelID, userID, displayName string) {
	members := p.channels[channelID]
	if members == nil {
		members = make(map[string]struct{})
		p.channels[channelID] = members
	}
	members[userID] = struct{}{}

	if displayName != "" {
		p.names[userID] = displayName
	}
}

// RemoveUser drops userID from channelID and returns the number of users left.
// The channel entry is deleted when it becomes empty.
func (p *PresenceTable) RemoveUser(channelID, userID string) int {
	members, ok := p.channels[channelID]
	if !ok {
		return 0
	}

	delete(members, userID)
	if len(members) == 0 {
		delete(p.channels, channelID)
		return 0
	}

	return len(members)
}

// Snapshot yields the members of channelID ordered by user ID. Users without a
// cached name are reported as user.UnknownUsername. The sequence reads the table
// each time it is iterated and never mutates it.
func (p *PresenceTable) Snapshot(channelID string) iter.Seq[Member] {
	return func(yield func(Member) bool) {
		userIDs := lo.Keys(p.channels[channelID])
		slices.Sort(userIDs)

		for _, userID := range userIDs {
			if !yield(Member{UserID: userID, Username: p.DisplayName(userID)}) {
				return
			}
		}
	}
}

// Members materializes Snapshot. It returns an empty, non-nil slice for absent channels.
func (p *PresenceTable) Members(channelID string) []Member {
	members := slices.Collect(p.Snapshot(channelID))
	if members == nil {
		members = []Member{}
	}
	return members
}

// Has reports whether userID is present in channelID.
func (p *PresenceTable) Has(channelID, userID string) bool {
	_, ok := p.channels[channelID][userID]
	return ok
}

// Exists reports whether channelID has a presence entry.
func (p *PresenceTable) Exists(channelID string) bool {
	_, ok := p.channels[channelID]
	return ok
}

// DisplayName returns the cached name of userID or user.UnknownUsername.
func (p *PresenceTable) DisplayName(userID string) string {
	if name, ok := p.names[userID]; ok && name != "" {
		return name
	}
	return user.UnknownUsername
}
