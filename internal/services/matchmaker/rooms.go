package matchmaker

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/badwolfdev/queuebot/internal/balance"
	"github.com/badwolfdev/queuebot/internal/matchmaking"
	"github.com/badwolfdev/queuebot/internal/models"
	"github.com/badwolfdev/queuebot/internal/voting"
)

// voteMajority closes a poll immediately when one option reaches it
const voteMajority = (matchmaking.LineupSize + 1) / 2

// beginEvent walks a fresh (or resumed pre-visibility) room through channel
// acquisition, visibility, and vote opening. Runs off the loop; every state
// mutation goes back through do. Aborts are terminal and broadcast to the
// ladder's queue channels.
func (s *service) beginEvent(roomID string) {
	defer logPanic("room begin")
	ctx := context.Background()

	var (
		ladder     models.Ladder
		categoryID string
		busy       []string
		channels   []string
		players    []*models.Player
		ok         bool
	)
	_ = s.do(ctx, func() {
		r := s.roomByID(roomID)
		if r == nil || r.Finished() {
			return
		}
		r.AwaitChannel()
		ladder = r.Ladder()
		categoryID = s.categories[ladder]
		busy = s.busyChannels()
		channels = append([]string(nil), s.queueChannels[ladder]...)
		players = r.Players()
		ok = true
	})
	if !ok {
		return
	}

	if categoryID == "" {
		s.broadcast(ctx, channels, fmt.Sprintf(
			"Cannot begin event. Admins have not set the category channel for %ss.",
			strings.ToUpper(string(ladder))))
		s.abortRoom(ctx, roomID, models.RoomStatusAbortedNoCategory)
		return
	}

	channelID, err := s.gateway.FindFreeChannel(ctx, categoryID, busy)
	if err != nil {
		log.Printf("failed to find a free channel for room %s: %v", roomID, err)
	}
	if channelID == "" {
		s.broadcast(ctx, channels,
			"Cannot begin event. There are no available channels to put a lineup in.")
		s.abortRoom(ctx, roomID, models.RoomStatusAbortedNoFreeChannel)
		return
	}

	_ = s.do(ctx, func() {
		if r := s.roomByID(roomID); r != nil {
			r.AttachChannel(channelID)
		}
	})

	if err := s.gateway.GrantChannelVisibility(ctx, channelID, playerIDs(players), true); err != nil {
		log.Printf("failed to grant visibility for room %s: %v", roomID, err)
	}
	_ = s.do(ctx, func() {
		if r := s.roomByID(roomID); r != nil {
			r.MarkVisibilityGranted()
		}
	})

	s.openVoting(roomID)
}

// abortRoom marks a room terminally failed and drops it from the active set
func (s *service) abortRoom(ctx context.Context, roomID string, status models.RoomStatus) {
	_ = s.do(ctx, func() {
		if r := s.roomByID(roomID); r != nil {
			r.Abort(status)
			s.pruneRooms()
		}
	})
}

// openVoting announces the event in the room channel and opens the format
// poll. Safe to call on a resumed room: a room that already holds a poll or
// a finished vote is left alone.
func (s *service) openVoting(roomID string) {
	defer logPanic("vote open")
	ctx := context.Background()

	var (
		channelID string
		mentions  string
		ok        bool
	)
	_ = s.do(ctx, func() {
		r := s.roomByID(roomID)
		if r == nil || r.Finished() || r.VoteFinished() || r.Poll() != nil {
			return
		}

		poll, err := voting.New(&voting.Config{
			Members:  r.MemberKeys(),
			Majority: voteMajority,
			OnFinish: func(winner models.Format, votes map[models.Format][]string) {
				s.handleVoteResult(roomID, winner, votes)
			},
			Shuffler: s.shuffler,
		})
		if err != nil {
			log.Printf("failed to open voting for room %s: %v", roomID, err)
			return
		}
		r.OpenVoting(poll)
		poll.Start(s.config.VoteTimeout)

		channelID = r.ChannelID()
		mentions = mentionAll(r.Players())
		ok = true
	})
	if !ok {
		return
	}

	s.send(channelID, fmt.Sprintf("%s the event has started. Cast your vote below.", mentions))
}

// handleVoteResult is the poll's finish callback: it assigns teams,
// randomizes the host order, and announces both. Runs on the poll's own
// goroutine; the friend-code lookups happen before the room is touched.
func (s *service) handleVoteResult(roomID string, winner models.Format, votes map[models.Format][]string) {
	defer logPanic("vote finish")
	ctx := context.Background()

	var hosts []*models.Player
	live := false
	_ = s.do(ctx, func() {
		r := s.roomByID(roomID)
		if r == nil || r.Finished() || r.VoteFinished() {
			return
		}
		hosts = balance.HostOrder(r.Players(), s.shuffler)
		live = true
	})
	if !live {
		return
	}

	hostOrder := s.renderHostOrder(ctx, hosts)

	var channelID, announcement string
	_ = s.do(ctx, func() {
		r := s.roomByID(roomID)
		if r == nil || r.Finished() {
			return
		}
		teams := balance.MakeTeams(r.Players(), winner, s.shuffler)
		if !r.FinishVote(winner, votes, teams, hostOrder) {
			return
		}
		r.Activate()
		channelID = r.ChannelID()
		announcement = teamsAnnouncement(winner, r.Players(), teams, hostOrder)
	})
	if announcement == "" {
		return
	}

	s.send(channelID, announcement)
}

// teardownRoom revokes channel visibility and closes the room
func (s *service) teardownRoom(roomID, channelID string, players []int64) {
	defer logPanic("room teardown")
	ctx := context.Background()

	if channelID != "" {
		if err := s.gateway.GrantChannelVisibility(ctx, channelID, players, false); err != nil {
			log.Printf("failed to revoke visibility for room %s: %v", roomID, err)
		}
	}
	_ = s.do(ctx, func() {
		if r := s.roomByID(roomID); r != nil {
			r.Close()
			s.pruneRooms()
		}
	})
}

// renderHostOrder renders the host serving order, appending each host's
// friend code when one is registered.
func (s *service) renderHostOrder(ctx context.Context, hosts []*models.Player) string {
	if len(hosts) == 0 {
		return "No one queued as a host."
	}

	var b strings.Builder
	b.WriteString("Host order:")
	for i, p := range hosts {
		fmt.Fprintf(&b, "\n%d. %s", i+1, p.Name)
		if fc, err := s.friendCodes.Get(ctx, p.DiscordID); err == nil {
			fmt.Fprintf(&b, " (%s)", fc)
		}
	}
	return b.String()
}

// teamsAnnouncement renders the vote winner, teams, and host order. 6v6
// additionally names the two highest-mmr players as captains.
func teamsAnnouncement(winner models.Format, players []*models.Player, teams [][]*models.Player, hostOrder string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Winner: %s", winner)

	if winner == models.Format6v6 && len(players) >= 2 {
		byMMR := append([]*models.Player(nil), players...)
		sort.SliceStable(byMMR, func(i, j int) bool { return byMMR[i].MMR > byMMR[j].MMR })
		fmt.Fprintf(&b, "\nFirst team captain: %s", mention(byMMR[0].DiscordID))
		fmt.Fprintf(&b, "\nSecond team captain: %s", mention(byMMR[1].DiscordID))
	}

	for i, team := range teams {
		names := make([]string, len(team))
		for j, p := range team {
			names[j] = p.Name
		}
		fmt.Fprintf(&b, "\n%d. %s (%d LR)", i+1, strings.Join(names, ", "), teamAverageLR(team))
	}

	b.WriteString("\n\n")
	b.WriteString(hostOrder)
	return b.String()
}

func teamAverageLR(team []*models.Player) int {
	if len(team) == 0 {
		return 0
	}
	sum := 0
	for _, p := range team {
		sum += p.LR
	}
	return sum / len(team)
}

func playerIDs(players []*models.Player) []int64 {
	ids := make([]int64, len(players))
	for i, p := range players {
		ids[i] = p.DiscordID
	}
	return ids
}

func mentionAll(players []*models.Player) string {
	mentions := make([]string, len(players))
	for i, p := range players {
		mentions[i] = mention(p.DiscordID)
	}
	return strings.Join(mentions, ", ")
}
