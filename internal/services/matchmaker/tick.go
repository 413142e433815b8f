package matchmaker

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/badwolfdev/queuebot/internal/matchmaking"
	"github.com/badwolfdev/queuebot/internal/models"
	"github.com/badwolfdev/queuebot/internal/room"
)

// Tick runs the periodic routines once, on demand. The control loop invokes
// the same routines on its own schedule.
func (s *service) Tick(ctx context.Context) error {
	return s.do(ctx, s.runTick)
}

// runTick drives one round of inactivity drops, lineup formation, room
// expiry, and expiry warnings. A failure anywhere is recovered, logged,
// reported to the queue channels, and never stops the next tick.
func (s *service) runTick() {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("recovered from tick failure: %v", rec)
			channels := s.allQueueChannels()
			text := fmt.Sprintf("Tell the admins to check the logs. The following error occurred: %v", rec)
			go func() {
				defer logPanic("tick failure report")
				s.broadcast(context.Background(), channels, text)
			}()
		}
	}()

	s.dropWarn()
	for _, ladder := range models.Ladders() {
		s.formLineups(ladder)
	}
	s.deleteExpiredRooms()
	s.warnAlmostExpiredRooms()
}

// dropWarn drops warned players who stayed inactive and warns the newly
// inactive. Drops are broadcast to the ladder's queue channels; warnings are
// grouped by the channel each player queued from.
func (s *service) dropWarn() {
	now := s.clock.Now()

	for _, ladder := range models.Ladders() {
		q := s.queues[ladder]
		channels := append([]string(nil), s.queueChannels[ladder]...)

		var dropped []string
		for _, p := range q.Players() {
			if p.DropWarned && now.Sub(p.LastActive) >= s.config.AutoDropTime {
				if removed, err := q.Remove(p.Key()); err == nil {
					dropped = append(dropped, removed.Name)
				}
			}
		}
		if len(dropped) > 0 {
			text := fmt.Sprintf("Removed %s due to inactivity.", strings.Join(dropped, ", "))
			for _, ch := range channels {
				s.send(ch, text)
			}
		}

		warnsByChannel := make(map[string][]string)
		for _, p := range q.Players() {
			if !p.DropWarned && now.Sub(p.LastActive) >= s.config.WarnDropTime {
				p.DropWarned = true
				warnsByChannel[p.QueueChannelID] = append(warnsByChannel[p.QueueChannelID], mention(p.DiscordID))
			}
		}
		graceMinutes := int((s.config.AutoDropTime - s.config.WarnDropTime).Minutes())
		for ch, mentions := range warnsByChannel {
			s.send(ch, fmt.Sprintf(
				"%s you will be dropped from the queue in %d minutes due to inactivity. "+
					"Please type something in the chat to remain in the queue.",
				strings.Join(mentions, ", "), graceMinutes))
		}
	}
}

// formLineups commits every candidate lineup that clears the score
// threshold, best first, removing committed players from both ladders before
// searching again. Announcements go out in queue order from one goroutine so
// the "Looking for rooms" message always precedes its outcome.
func (s *service) formLineups(ladder models.Ladder) {
	now := s.clock.Now()
	q := s.queues[ladder]
	channels := append([]string(nil), s.queueChannels[ladder]...)

	var announcements []string
	for {
		best := matchmaking.Best(matchmaking.BestLineups(q, now))
		if best == nil || best.Score < matchmaking.ScoreThreshold {
			break
		}

		for _, p := range best.Players {
			for _, l := range models.Ladders() {
				_, _ = s.queues[l].Remove(p.Key())
			}
		}

		roomID := s.uuider.NewUUID()
		r, err := room.New(&room.Config{
			ID:      roomID,
			Players: best.Players,
			Ladder:  ladder,
			Now:     now,
		})
		if err != nil {
			log.Printf("failed to create room for %s lineup: %v", ladder, err)
			break
		}
		s.rooms = append(s.rooms, r)

		article := "an"
		if ladder == models.LadderCT {
			article = "a"
		}
		names := make([]string, len(best.Players))
		for i, p := range best.Players {
			names[i] = p.Name
		}
		text := fmt.Sprintf("A room has formed. Starting %s %s event for `%s`...",
			article, strings.ToUpper(string(ladder)), strings.Join(names, ", "))
		announcements = append(announcements, text+"\n"+matchmaking.CandidateSummary(best, now))

		go s.beginEvent(roomID)
	}

	go s.announceFormation(channels, announcements)
}

// announceFormation posts the search notice to every queue channel, then
// either follows with the formation announcements or edits the notices to
// the negative result.
func (s *service) announceFormation(channels []string, announcements []string) {
	defer logPanic("formation announcement")
	ctx := context.Background()

	type sentMessage struct {
		channelID string
		messageID string
	}
	var notices []sentMessage
	for _, ch := range channels {
		messageID, err := s.gateway.SendMessage(ctx, ch, "Looking for rooms that can be created...")
		if err != nil {
			log.Printf("failed to send message to channel %s: %v", ch, err)
			continue
		}
		notices = append(notices, sentMessage{channelID: ch, messageID: messageID})
	}

	if len(announcements) == 0 {
		for _, notice := range notices {
			if err := s.gateway.EditMessage(ctx, notice.channelID, notice.messageID, "No rooms can be formed."); err != nil {
				log.Printf("failed to edit message in channel %s: %v", notice.channelID, err)
			}
		}
		return
	}

	for _, text := range announcements {
		s.broadcast(ctx, channels, text)
	}
}

// deleteExpiredRooms marks lapsed rooms expired and tears them down. A room
// stays in the active set, holding its channel busy, until the teardown
// closes it.
func (s *service) deleteExpiredRooms() {
	now := s.clock.Now()
	for _, r := range s.rooms {
		if r.Finished() || r.Status() == models.RoomStatusExpired {
			continue
		}
		if r.IsExpired(now) {
			r.Expire()
			go s.teardownRoom(r.ID(), r.ChannelID(), playerIDs(r.Players()))
		}
	}
	s.pruneRooms()
}

// warnAlmostExpiredRooms sends the one-shot expiry warning to rooms inside
// the warning window
func (s *service) warnAlmostExpiredRooms() {
	now := s.clock.Now()
	for _, r := range s.rooms {
		if r.Finished() || r.Status() == models.RoomStatusExpired || r.ChannelID() == "" {
			continue
		}
		if r.ShouldWarnExpiration(now) {
			r.MarkExpirationWarned()
			s.send(r.ChannelID(), fmt.Sprintf(
				"**Players will lose access to this channel in %d minutes.** "+
					"Use slash command `/extend` for a %d minute extension.",
				int(room.WarnTime.Minutes()), int(room.ExtensionTime.Minutes())))
		}
	}
}
