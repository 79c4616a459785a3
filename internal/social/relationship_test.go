package social

import (
	"context"
	"io"
	"testing"

	"github.com/pipcrest/tradejournal/backend/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubFriendshipRepo is an in-memory FriendshipRepository that mimics the
// Postgres behavior the service depends on, including the unique index on
// the (sender_id, recipient_id) pair.
type stubFriendshipRepo struct {
	requests    []*models.FriendRequest
	friendships map[string]*models.Friendship
	nextID      uint
}

func newStubFriendshipRepo() *stubFriendshipRepo {
	return &stubFriendshipRepo{friendships: map[string]*models.Friendship{}}
}

func pairKey(user1, user2 string) string { return user1 + "|" + user2 }

func (s *stubFriendshipRepo) GetRequestBetween(userA, userB string) (*models.FriendRequest, error) {
	for _, r := range s.requests {
		if (r.SenderID == userA && r.RecipientID == userB) || (r.SenderID == userB && r.RecipientID == userA) {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubFriendshipRepo) CreateRequest(req *models.FriendRequest) error {
	for _, r := range s.requests {
		if r.SenderID == req.SenderID && r.RecipientID == req.RecipientID {
			return gorm.ErrDuplicatedKey
		}
	}
	s.nextID++
	req.ID = s.nextID
	s.requests = append(s.requests, req)
	return nil
}

func (s *stubFriendshipRepo) UpdatePendingRequest(senderID, recipientID string, to models.RequestStatus) (int64, error) {
	var n int64
	for _, r := range s.requests {
		if r.SenderID == senderID && r.RecipientID == recipientID && r.Status == models.RequestStatusPending {
			r.Status = to
			n++
		}
	}
	return n, nil
}

func (s *stubFriendshipRepo) DeleteRequestByID(id uint) error {
	for i, r := range s.requests {
		if r.ID == id {
			s.requests = append(s.requests[:i], s.requests[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *stubFriendshipRepo) DeletePendingRequest(senderID, recipientID string) (int64, error) {
	var n int64
	kept := s.requests[:0]
	for _, r := range s.requests {
		if r.SenderID == senderID && r.RecipientID == recipientID && r.Status == models.RequestStatusPending {
			n++
			continue
		}
		kept = append(kept, r)
	}
	s.requests = kept
	return n, nil
}

func (s *stubFriendshipRepo) DeleteAcceptedBetween(userA, userB string) (int64, error) {
	var n int64
	kept := s.requests[:0]
	for _, r := range s.requests {
		between := (r.SenderID == userA && r.RecipientID == userB) || (r.SenderID == userB && r.RecipientID == userA)
		if between && r.Status == models.RequestStatusAccepted {
			n++
			continue
		}
		kept = append(kept, r)
	}
	s.requests = kept
	return n, nil
}

func (s *stubFriendshipRepo) ListIncomingRequests(recipientID string) ([]models.FriendRequest, error) {
	var out []models.FriendRequest
	for _, r := range s.requests {
		if r.RecipientID == recipientID && r.Status == models.RequestStatusPending {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *stubFriendshipRepo) ListFriends(userID string) ([]models.User, error) {
	var out []models.User
	for _, r := range s.requests {
		if r.Status != models.RequestStatusAccepted {
			continue
		}
		if r.SenderID == userID {
			out = append(out, models.User{FirebaseUID: r.RecipientID})
		} else if r.RecipientID == userID {
			out = append(out, models.User{FirebaseUID: r.SenderID})
		}
	}
	return out, nil
}

func (s *stubFriendshipRepo) UpsertFriendship(f *models.Friendship) error {
	key := pairKey(f.User1ID, f.User2ID)
	if existing, ok := s.friendships[key]; ok {
		existing.Status = f.Status
		existing.ActionUserID = f.ActionUserID
		return nil
	}
	s.nextID++
	f.ID = s.nextID
	s.friendships[key] = f
	return nil
}

func (s *stubFriendshipRepo) GetFriendship(user1ID, user2ID string) (*models.Friendship, error) {
	if f, ok := s.friendships[pairKey(user1ID, user2ID)]; ok {
		return f, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubFriendshipRepo) DeleteFriendship(user1ID, user2ID string) (int64, error) {
	key := pairKey(user1ID, user2ID)
	if _, ok := s.friendships[key]; !ok {
		return 0, nil
	}
	delete(s.friendships, key)
	return 1, nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestService() (*FriendshipService, *stubFriendshipRepo) {
	repo := newStubFriendshipRepo()
	return NewFriendshipService(repo, nil, testLogger()), repo
}

func TestSendRequestCreatesPending(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	req, err := svc.SendRequest(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, "alice", req.SenderID)
	assert.Equal(t, "bob", req.RecipientID)
	assert.Equal(t, models.RequestStatusPending, req.Status)

	rel, err := svc.Relationship(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, RelationshipPendingSent, rel)

	rel, err = svc.Relationship(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, RelationshipPendingReceived, rel)
}

func TestSendRequestToSelf(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.SendRequest(context.Background(), "alice", "alice")
	assert.ErrorIs(t, err, ErrSelfReference)
}

func TestSendRequestDuplicate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, "alice", "bob")
	require.NoError(t, err)

	_, err = svc.SendRequest(ctx, "alice", "bob")
	assert.ErrorIs(t, err, ErrDuplicateRequest)
}

func TestSendRequestReciprocal(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, "alice", "bob")
	require.NoError(t, err)

	// Bob should accept the pending request, not send his own.
	_, err = svc.SendRequest(ctx, "bob", "alice")
	assert.ErrorIs(t, err, ErrReciprocalRequest)
}

func TestSendRequestWhenAlreadyFriends(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NoError(t, svc.AcceptRequest(ctx, "bob", "alice"))

	_, err = svc.SendRequest(ctx, "alice", "bob")
	assert.ErrorIs(t, err, ErrAlreadyFriends)

	_, err = svc.SendRequest(ctx, "bob", "alice")
	assert.ErrorIs(t, err, ErrAlreadyFriends)
}

func TestAcceptRequest(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NoError(t, svc.AcceptRequest(ctx, "bob", "alice"))

	for _, pair := range [][2]string{{"alice", "bob"}, {"bob", "alice"}} {
		rel, err := svc.Relationship(ctx, pair[0], pair[1])
		require.NoError(t, err)
		assert.Equal(t, RelationshipFriends, rel)
	}
}

func TestAcceptMissingRequest(t *testing.T) {
	svc, _ := newTestService()

	err := svc.AcceptRequest(context.Background(), "bob", "alice")
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestAcceptTwice(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NoError(t, svc.AcceptRequest(ctx, "bob", "alice"))

	// Already actioned looks the same as never existed.
	err = svc.AcceptRequest(ctx, "bob", "alice")
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestDeclineThenResend(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NoError(t, svc.DeclineRequest(ctx, "bob", "alice"))

	rel, err := svc.Relationship(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, RelationshipNone, rel)

	// A decline does not bar future requests; the old row is superseded.
	req, err := svc.SendRequest(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, req.Status)
}

func TestCancelRequest(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NoError(t, svc.CancelRequest(ctx, "alice", "bob"))

	// Cancellation is a hard delete, not a status.
	assert.Empty(t, repo.requests)

	err = svc.AcceptRequest(ctx, "bob", "alice")
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestCancelAfterAccept(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NoError(t, svc.AcceptRequest(ctx, "bob", "alice"))

	// Only pending requests can be cancelled.
	err = svc.CancelRequest(ctx, "alice", "bob")
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestUnfriend(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NoError(t, svc.AcceptRequest(ctx, "bob", "alice"))

	// Either side may unfriend, regardless of who sent the request.
	require.NoError(t, svc.Unfriend(ctx, "bob", "alice"))

	rel, err := svc.Relationship(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, RelationshipNone, rel)
}

func TestBlockTakesPrecedence(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NoError(t, svc.AcceptRequest(ctx, "bob", "alice"))
	require.NoError(t, svc.Block(ctx, "alice", "bob"))

	// BLOCKED wins over the accepted request from both sides.
	for _, pair := range [][2]string{{"alice", "bob"}, {"bob", "alice"}} {
		rel, err := svc.Relationship(ctx, pair[0], pair[1])
		require.NoError(t, err)
		assert.Equal(t, RelationshipBlocked, rel)
	}
}

func TestUnblockRestoresRequestState(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NoError(t, svc.AcceptRequest(ctx, "bob", "alice"))
	require.NoError(t, svc.Block(ctx, "alice", "bob"))
	require.NoError(t, svc.Unblock(ctx, "alice", "bob"))

	// Request history was left untouched under the block.
	rel, err := svc.Relationship(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, RelationshipFriends, rel)
}

func TestUnblockOnlyByBlocker(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Block(ctx, "alice", "bob"))

	err := svc.Unblock(ctx, "bob", "alice")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	rel, err := svc.Relationship(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, RelationshipBlocked, rel)
}

func TestUnblockWhenNotBlocked(t *testing.T) {
	svc, _ := newTestService()

	err := svc.Unblock(context.Background(), "alice", "bob")
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestBlockIsSelfContained(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NoError(t, svc.Block(ctx, "bob", "alice"))

	// Blocking from either side resolves to the same canonical row.
	require.NoError(t, svc.Block(ctx, "alice", "bob"))

	rel, err := svc.Relationship(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, RelationshipBlocked, rel)
}

func TestListFriendsAndIncoming(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, "alice", "bob")
	require.NoError(t, err)
	_, err = svc.SendRequest(ctx, "carol", "bob")
	require.NoError(t, err)
	require.NoError(t, svc.AcceptRequest(ctx, "bob", "alice"))

	friends, err := svc.ListFriends(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "alice", friends[0].FirebaseUID)

	incoming, err := svc.ListIncomingRequests(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, "carol", incoming[0].SenderID)
}
