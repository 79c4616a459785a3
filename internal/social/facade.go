package social

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pipcrest/tradejournal/backend/internal/models"
	"github.com/pipcrest/tradejournal/backend/internal/realtime"
	"github.com/pipcrest/tradejournal/backend/internal/repositories"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Facade is the single entry point the HTTP layer calls into the social
// core. It hides the two relationship tables, owns the counter cache,
// and maps every failure to a domain error before it crosses the
// boundary.
type Facade struct {
	friendships  *FriendshipService
	reactions    *ReactionService
	comments     repositories.CommentRepository
	reactionRepo repositories.ReactionRepository
	setups       repositories.TradeSetupRepository
	counters     *CounterSync
	feed         realtime.Feed
	notifier     Notifier
	log          *logrus.Logger
}

// NewFacade creates a Facade. feed and notifier may be nil; the facade
// then runs without live reconciliation or outbound notifications.
func NewFacade(
	friendships *FriendshipService,
	reactions *ReactionService,
	comments repositories.CommentRepository,
	reactionRepo repositories.ReactionRepository,
	setups repositories.TradeSetupRepository,
	counters *CounterSync,
	feed realtime.Feed,
	notifier Notifier,
	log *logrus.Logger,
) *Facade {
	return &Facade{
		friendships:  friendships,
		reactions:    reactions,
		comments:     comments,
		reactionRepo: reactionRepo,
		setups:       setups,
		counters:     counters,
		feed:         feed,
		notifier:     notifier,
		log:          log,
	}
}

// TargetEntity is the counter-cache key for a reaction target.
func TargetEntity(kind models.TargetKind, targetID string) string {
	return string(kind) + ":" + targetID
}

func eventKey(typ realtime.EventType, table string, rowID uint) string {
	return fmt.Sprintf("%s:%s:%d", typ, table, rowID)
}

// --- friendship operations ---

// SendRequest sends a friend request from the current user to otherID
func (f *Facade) SendRequest(ctx context.Context, otherID string) (*models.FriendRequest, error) {
	self, err := CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}
	return f.friendships.SendRequest(ctx, self, otherID)
}

// AcceptRequest accepts the pending request senderID sent to the current user
func (f *Facade) AcceptRequest(ctx context.Context, senderID string) error {
	self, err := CurrentUserID(ctx)
	if err != nil {
		return err
	}
	return f.friendships.AcceptRequest(ctx, self, senderID)
}

// DeclineRequest declines the pending request senderID sent to the current user
func (f *Facade) DeclineRequest(ctx context.Context, senderID string) error {
	self, err := CurrentUserID(ctx)
	if err != nil {
		return err
	}
	return f.friendships.DeclineRequest(ctx, self, senderID)
}

// CancelRequest withdraws the current user's still-pending request to recipientID
func (f *Facade) CancelRequest(ctx context.Context, recipientID string) error {
	self, err := CurrentUserID(ctx)
	if err != nil {
		return err
	}
	return f.friendships.CancelRequest(ctx, self, recipientID)
}

// Unfriend removes the accepted friendship between the current user and otherID
func (f *Facade) Unfriend(ctx context.Context, otherID string) error {
	self, err := CurrentUserID(ctx)
	if err != nil {
		return err
	}
	return f.friendships.Unfriend(ctx, self, otherID)
}

// Block blocks otherID for the current user
func (f *Facade) Block(ctx context.Context, otherID string) error {
	self, err := CurrentUserID(ctx)
	if err != nil {
		return err
	}
	return f.friendships.Block(ctx, self, otherID)
}

// Unblock lifts a block the current user previously placed on otherID
func (f *Facade) Unblock(ctx context.Context, otherID string) error {
	self, err := CurrentUserID(ctx)
	if err != nil {
		return err
	}
	return f.friendships.Unblock(ctx, self, otherID)
}

// GetRelationship reports the relationship between the current user and otherID
func (f *Facade) GetRelationship(ctx context.Context, otherID string) (Relationship, error) {
	self, err := CurrentUserID(ctx)
	if err != nil {
		return "", err
	}
	return f.friendships.Relationship(ctx, self, otherID)
}

// ListFriends lists the current user's accepted friends
func (f *Facade) ListFriends(ctx context.Context) ([]models.User, error) {
	self, err := CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}
	return f.friendships.ListFriends(ctx, self)
}

// ListIncomingRequests lists pending requests addressed to the current user
func (f *Facade) ListIncomingRequests(ctx context.Context) ([]models.FriendRequest, error) {
	self, err := CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}
	return f.friendships.ListIncomingRequests(ctx, self)
}

// --- comment operations ---

// PostComment creates a top-level comment on a trade setup. The comments
// counter is bumped optimistically once the write is submitted and rolled
// back if storage rejects it.
func (f *Facade) PostComment(ctx context.Context, setupID, content string) (*models.Comment, error) {
	return f.postComment(ctx, setupID, nil, content)
}

// PostReply creates a reply to an existing comment on the same setup.
func (f *Facade) PostReply(ctx context.Context, setupID string, parentCommentID uint, content string) (*models.Comment, error) {
	parent, err := f.comments.GetCommentByID(parentCommentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("look up parent comment: %w", err)
	}
	if parent.TradeSetupID != setupID {
		return nil, ErrCommentNotFound
	}
	return f.postComment(ctx, setupID, &parentCommentID, content)
}

func (f *Facade) postComment(ctx context.Context, setupID string, parentID *uint, content string) (*models.Comment, error) {
	self, err := CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	entity := SetupEntity(setupID)
	f.seedSetup(ctx, setupID)

	f.counters.Optimistic(entity, KindComments, 1)
	comment := &models.Comment{
		TradeSetupID:    setupID,
		AuthorID:        self,
		Content:         content,
		ParentCommentID: parentID,
	}
	if err := f.comments.CreateComment(comment); err != nil {
		f.counters.Rollback(entity, KindComments, 1)
		return nil, fmt.Errorf("create comment: %w", err)
	}
	f.counters.ConfirmWrite(entity, KindComments, eventKey(realtime.EventInsert, "comments", comment.ID), 1)

	go f.adjustSetupCounter(setupID, KindComments, 1)
	f.notifySetupAuthor(setupID, self, models.NotificationComment, "commented on your trade setup")

	return comment, nil
}

// DeleteComment removes a comment owned by the current user. Replies are
// left in place and surface as roots in the rebuilt tree.
func (f *Facade) DeleteComment(ctx context.Context, commentID uint) error {
	self, err := CurrentUserID(ctx)
	if err != nil {
		return err
	}

	comment, err := f.comments.GetCommentByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("look up comment: %w", err)
	}
	if comment.AuthorID != self {
		return ErrNotAuthorized
	}

	entity := SetupEntity(comment.TradeSetupID)
	f.seedSetup(ctx, comment.TradeSetupID)

	f.counters.Optimistic(entity, KindComments, -1)
	if err := f.comments.DeleteComment(commentID); err != nil {
		f.counters.Rollback(entity, KindComments, -1)
		return fmt.Errorf("delete comment: %w", err)
	}
	f.counters.ConfirmWrite(entity, KindComments, eventKey(realtime.EventDelete, "comments", commentID), -1)

	go f.adjustSetupCounter(comment.TradeSetupID, KindComments, -1)
	return nil
}

// EditComment replaces a comment's content and marks it edited. Only the
// author may edit; edits never move counters.
func (f *Facade) EditComment(ctx context.Context, commentID uint, content string) (*models.Comment, error) {
	self, err := CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	comment, err := f.comments.GetCommentByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("look up comment: %w", err)
	}
	if comment.AuthorID != self {
		return nil, ErrNotAuthorized
	}

	if err := f.comments.UpdateCommentContent(commentID, content); err != nil {
		return nil, fmt.Errorf("edit comment: %w", err)
	}
	comment.Content = content
	comment.IsEdited = true
	return comment, nil
}

// BuildCommentTree loads a setup's comments chronologically and nests
// them into a reply tree with per-comment reaction counts filled in.
func (f *Facade) BuildCommentTree(ctx context.Context, setupID string) ([]*CommentNode, error) {
	comments, err := f.comments.ListCommentsBySetup(setupID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	for i := range comments {
		likes, dislikes, err := f.reactionRepo.CountReactions(models.TargetComment, strconv.FormatUint(uint64(comments[i].ID), 10))
		if err != nil {
			return nil, fmt.Errorf("count comment reactions: %w", err)
		}
		comments[i].LikesCount = int(likes)
		comments[i].DislikesCount = int(dislikes)
	}

	return BuildCommentTree(comments), nil
}

// --- reaction operations ---

// React toggles the current user's reaction on a setup or comment and
// returns the new reaction state with fresh counters.
func (f *Facade) React(ctx context.Context, kind models.TargetKind, targetID string, t models.ReactionType) (*ReactionResult, error) {
	self, err := CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	if kind == models.TargetComment {
		id, perr := strconv.ParseUint(targetID, 10, 32)
		if perr != nil {
			return nil, ErrCommentNotFound
		}
		if _, gerr := f.comments.GetCommentByID(uint(id)); gerr != nil {
			if errors.Is(gerr, gorm.ErrRecordNotFound) {
				return nil, ErrCommentNotFound
			}
			return nil, fmt.Errorf("look up comment: %w", gerr)
		}
	}

	entity := TargetEntity(kind, targetID)
	f.seedTarget(ctx, kind, targetID)

	before, err := f.reactionRepo.GetReaction(kind, targetID, self)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("look up reaction: %w", err)
	}

	predicted := reactionDeltas(before, t)
	for _, d := range predicted {
		f.counters.Optimistic(entity, d.kind, d.delta)
	}

	result, err := f.reactions.React(ctx, kind, targetID, self, t)
	if err != nil {
		for _, d := range predicted {
			f.counters.Rollback(entity, d.kind, d.delta)
		}
		return nil, err
	}

	f.settleReaction(entity, before, result.Reaction, predicted)

	if kind == models.TargetSetup {
		for _, d := range actualDeltas(before, result.Reaction) {
			go f.adjustSetupCounter(targetID, d.kind, d.delta)
		}
		if before == nil && result.Reaction != nil {
			f.notifySetupAuthor(targetID, self, models.NotificationReaction, "reacted to your trade setup")
		}
	}
	return result, nil
}

type counterDelta struct {
	kind  CounterKind
	delta int
}

// reactionDeltas predicts the counter effect of applying type t on top of
// the user's current reaction.
func reactionDeltas(before *models.Reaction, t models.ReactionType) []counterDelta {
	kindOf := func(rt models.ReactionType) CounterKind {
		if rt == models.ReactionLike {
			return KindLikes
		}
		return KindDislikes
	}
	if before == nil {
		return []counterDelta{{kindOf(t), 1}}
	}
	if before.Type == t {
		return []counterDelta{{kindOf(t), -1}}
	}
	return []counterDelta{{kindOf(before.Type), -1}, {kindOf(t), 1}}
}

// actualDeltas derives the realized counter effect from the before/after
// reaction states, which can differ from the prediction under a race.
func actualDeltas(before, after *models.Reaction) []counterDelta {
	kindOf := func(rt models.ReactionType) CounterKind {
		if rt == models.ReactionLike {
			return KindLikes
		}
		return KindDislikes
	}
	switch {
	case before == nil && after == nil:
		return nil
	case before == nil:
		return []counterDelta{{kindOf(after.Type), 1}}
	case after == nil:
		return []counterDelta{{kindOf(before.Type), -1}}
	case before.Type == after.Type:
		return nil
	default:
		return []counterDelta{{kindOf(before.Type), -1}, {kindOf(after.Type), 1}}
	}
}

func (f *Facade) settleReaction(entity string, before, after *models.Reaction, predicted []counterDelta) {
	// Retire the prediction, then confirm what actually happened with the
	// row ids the feed will echo back.
	for _, d := range predicted {
		f.counters.Rollback(entity, d.kind, d.delta)
	}

	actual := actualDeltas(before, after)
	var key string
	switch {
	case before == nil && after != nil:
		key = eventKey(realtime.EventInsert, "reactions", after.ID)
	case before != nil && after == nil:
		key = eventKey(realtime.EventDelete, "reactions", before.ID)
	case before != nil && after != nil:
		key = eventKey(realtime.EventUpdate, "reactions", after.ID)
	}
	for _, d := range actual {
		f.counters.ConfirmWrite(entity, d.kind, key, d.delta)
	}
}

// --- counters ---

// GetCounters returns the displayed counters for an entity key such as
// "setup:<id>" or "comment:<id>", reading through to storage on a miss.
func (f *Facade) GetCounters(ctx context.Context, entity string) (Counters, error) {
	if c, ok := f.counters.Counters(entity); ok {
		return c, nil
	}

	c, err := f.loadAuthoritative(ctx, entity)
	if err != nil {
		return Counters{}, err
	}
	f.counters.Seed(entity, c)
	counters, _ := f.counters.Counters(entity)
	return counters, nil
}

func (f *Facade) loadAuthoritative(ctx context.Context, entity string) (Counters, error) {
	kind, targetID, ok := strings.Cut(entity, ":")
	if !ok {
		return Counters{}, fmt.Errorf("malformed entity key %q", entity)
	}

	likes, dislikes, err := f.reactionRepo.CountReactions(models.TargetKind(kind), targetID)
	if err != nil {
		return Counters{}, fmt.Errorf("count reactions: %w", err)
	}
	c := Counters{Likes: int(likes), Dislikes: int(dislikes)}

	if models.TargetKind(kind) == models.TargetSetup {
		comments, err := f.comments.CountCommentsBySetup(targetID)
		if err != nil {
			return Counters{}, fmt.Errorf("count comments: %w", err)
		}
		c.Comments = int(comments)
	}
	return c, nil
}

func (f *Facade) seedSetup(ctx context.Context, setupID string) {
	f.seedEntity(ctx, SetupEntity(setupID))
}

func (f *Facade) seedTarget(ctx context.Context, kind models.TargetKind, targetID string) {
	f.seedEntity(ctx, TargetEntity(kind, targetID))
}

func (f *Facade) seedEntity(ctx context.Context, entity string) {
	if _, ok := f.counters.Counters(entity); ok {
		return
	}
	c, err := f.loadAuthoritative(ctx, entity)
	if err != nil {
		f.log.WithError(err).WithField("entity", entity).Warn("counter seed failed")
		return
	}
	f.counters.Seed(entity, c)
}

// --- change feed reconciliation ---

type commentRow struct {
	ID           uint   `json:"id"`
	TradeSetupID string `json:"trade_setup_id"`
}

type reactionRow struct {
	ID         uint   `json:"id"`
	TargetKind string `json:"target_kind"`
	TargetID   string `json:"target_id"`
	Type       string `json:"type"`
}

// Run consumes the change feed until ctx is cancelled, reconciling
// authoritative events into the counter cache and resyncing after
// reconnects. Intended to run in its own goroutine.
func (f *Facade) Run(ctx context.Context) {
	if f.feed == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-f.feed.Resyncs():
			f.resync(ctx)
		case ev, ok := <-f.feed.Events():
			if !ok {
				return
			}
			f.applyEvent(ctx, ev)
		}
	}
}

func (f *Facade) applyEvent(ctx context.Context, ev realtime.Event) {
	switch ev.Table {
	case "comments":
		var row commentRow
		if err := unmarshalRow(ev.Row, &row); err != nil {
			f.log.WithError(err).Warn("undecodable comment event dropped")
			return
		}
		entity := SetupEntity(row.TradeSetupID)
		key := eventKey(ev.Type, "comments", row.ID)
		switch ev.Type {
		case realtime.EventInsert:
			f.counters.ApplyInsert(entity, KindComments, key)
		case realtime.EventDelete:
			f.counters.ApplyDelete(entity, KindComments, key)
		}
		// Edits do not change counts.

	case "reactions":
		var row reactionRow
		if err := unmarshalRow(ev.Row, &row); err != nil {
			f.log.WithError(err).Warn("undecodable reaction event dropped")
			return
		}
		entity := TargetEntity(models.TargetKind(row.TargetKind), row.TargetID)
		kind := KindLikes
		if row.Type == string(models.ReactionDislike) {
			kind = KindDislikes
		}
		key := eventKey(ev.Type, "reactions", row.ID)
		switch ev.Type {
		case realtime.EventInsert:
			f.counters.ApplyInsert(entity, kind, key)
		case realtime.EventDelete:
			f.counters.ApplyDelete(entity, kind, key)
		case realtime.EventUpdate:
			// A type switch moves two counters at once with no insert or
			// delete to key on; re-read the authoritative pair instead.
			// Untracked entities are left for the next read to seed.
			if !f.counters.IsTracked(entity) {
				return
			}
			likes, dislikes, err := f.reactionRepo.CountReactions(models.TargetKind(row.TargetKind), row.TargetID)
			if err != nil {
				f.log.WithError(err).Warn("reaction refresh failed")
				return
			}
			f.counters.SetAuthoritativeReactions(entity, int(likes), int(dislikes))
		}
	}
}

// resync runs after a feed reconnection: stale optimistic deltas are
// discarded and every tracked entity is re-read authoritatively, since
// notifications may have been lost while disconnected.
func (f *Facade) resync(ctx context.Context) {
	f.counters.ExpireStale()
	for _, entity := range f.counters.Tracked() {
		c, err := f.loadAuthoritative(ctx, entity)
		if err != nil {
			f.log.WithError(err).WithField("entity", entity).Warn("counter resync failed")
			continue
		}
		f.counters.SetAuthoritative(entity, c)
	}
	f.log.WithField("entities", len(f.counters.Tracked())).Info("counter cache resynced")
}

// --- side effects ---

func (f *Facade) adjustSetupCounter(setupID string, kind CounterKind, delta int) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var err error
	switch kind {
	case KindComments:
		err = f.setups.AdjustCommentsCount(ctx, setupID, delta)
	case KindLikes:
		err = f.setups.AdjustLikesCount(ctx, setupID, delta)
	case KindDislikes:
		err = f.setups.AdjustDislikesCount(ctx, setupID, delta)
	}
	if err != nil {
		f.log.WithError(err).WithField("setup_id", setupID).Warn("setup counter adjust failed")
	}
}

func (f *Facade) notifySetupAuthor(setupID, actorID, notifType, message string) {
	if f.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		setup, err := f.setups.GetSetupByID(ctx, setupID)
		if err != nil {
			f.log.WithError(err).Warn("notification target lookup failed")
			return
		}
		if setup.AuthorID == actorID {
			return
		}
		n := models.Notification{
			Type:        notifType,
			ActorID:     actorID,
			RecipientID: setup.AuthorID,
			TargetID:    setupID,
			TargetType:  "setup",
			Message:     message,
		}
		if err := f.notifier.Notify(ctx, n); err != nil {
			f.log.WithError(err).WithField("type", notifType).Warn("notification delivery failed")
		}
	}()
}

func unmarshalRow(raw []byte, v interface{}) error {
	if len(raw) == 0 {
		return fmt.Errorf("empty row payload")
	}
	return json.Unmarshal(raw, v)
}
