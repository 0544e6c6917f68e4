package impl

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursecraft/internal/domain/entity"
	domainerrors "coursecraft/internal/domain/errors"
	"coursecraft/internal/domain/service"
	"coursecraft/internal/usecase"
)

func newTestNotificationService(env *testEnv) usecase.NotificationUsecase {
	return NewNotificationService(NotificationServiceParams{
		TxManager:        env.txManager,
		NotificationRepo: env.notifications,
		Logger:           env.logger,
	})
}

func TestNotificationService_Feed(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestNotificationService(env)
	ctx := context.Background()

	feed, err := srv.Feed(ctx, seedCreatorID)
	require.NoError(t, err)
	require.Len(t, feed.Items, 3)
	assert.Equal(t, 2, feed.Unread)
	assert.Equal(t, "1", feed.Items[0].ID, "newest first")

	empty, err := srv.Feed(ctx, "student-01")
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.Zero(t, empty.Unread)
}

func TestNotificationService_MarkRead(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestNotificationService(env)
	ctx := context.Background()

	require.NoError(t, srv.MarkRead(ctx, seedCreatorID, "1"))

	feed, err := srv.Feed(ctx, seedCreatorID)
	require.NoError(t, err)
	assert.Equal(t, 1, feed.Unread)

	err = srv.MarkRead(ctx, seedCreatorID, "missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotificationNotFound)

	err = srv.MarkRead(ctx, "student-01", "2")
	assert.ErrorIs(t, err, domainerrors.ErrNotificationNotFound, "other users' notifications are invisible")

	require.NoError(t, srv.MarkAllRead(ctx, seedCreatorID))
	feed, err = srv.Feed(ctx, seedCreatorID)
	require.NoError(t, err)
	assert.Zero(t, feed.Unread)
}

func TestNotificationService_HandleStoreEvent_Review(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestNotificationService(env)
	ctx := context.Background()

	event := &service.StoreEvent{
		EventID:    "evt-review",
		Type:       service.EventReviewAdded,
		CreatorID:  seedCreatorID,
		ProductID:  "1",
		ActorID:    "student-03",
		OccurredAt: time.Now().UTC(),
		Attributes: map[string]string{"reviewer_name": "Ada", "rating": "5"},
	}
	require.NoError(t, srv.HandleStoreEvent(ctx, event))
	require.NoError(t, srv.HandleStoreEvent(ctx, event), "redelivery is a no-op")

	feed, err := srv.Feed(ctx, seedCreatorID)
	require.NoError(t, err)
	require.Len(t, feed.Items, 4)
	assert.Equal(t, "evt-review", feed.Items[0].ID)
	assert.Equal(t, entity.NotificationReview, feed.Items[0].Type)
	assert.Equal(t, "Ada left a 5-star review on your product.", feed.Items[0].Message)
}

func TestNotificationService_HandleStoreEvent_Ignored(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestNotificationService(env)
	ctx := context.Background()

	require.NoError(t, srv.HandleStoreEvent(ctx, nil))
	require.NoError(t, srv.HandleStoreEvent(ctx, &service.StoreEvent{EventID: "evt-x", Type: service.EventSaleRecorded}))
	require.NoError(t, srv.HandleStoreEvent(ctx, &service.StoreEvent{
		EventID:   "evt-click",
		Type:      service.EventAffiliateClick,
		CreatorID: seedCreatorID,
	}))

	feed, err := srv.Feed(ctx, seedCreatorID)
	require.NoError(t, err)
	assert.Len(t, feed.Items, 3)
}

func TestNotificationService_HandleStoreEvent_Milestone(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestNotificationService(env)
	ctx := context.Background()

	product, err := env.products.FindByID(ctx, "2")
	require.NoError(t, err)

	// The seed has seven students; the tenth buyer lands on a milestone.
	for i := 8; i <= 10; i++ {
		id := fmt.Sprintf("student-%02d", i)
		env.addStudent(t, id)
		env.buy(t, id, product)

		require.NoError(t, srv.HandleStoreEvent(ctx, &service.StoreEvent{
			EventID:    "evt-sale-" + id,
			Type:       service.EventSaleRecorded,
			CreatorID:  seedCreatorID,
			ProductID:  product.ID,
			ActorID:    id,
			Attributes: map[string]string{"product_name": product.Name},
		}))
	}

	feed, err := srv.Feed(ctx, seedCreatorID)
	require.NoError(t, err)
	require.Len(t, feed.Items, 3+3+1)

	var milestones []entity.Notification
	for _, n := range feed.Items {
		if n.Type == entity.NotificationMilestone && n.ID != "3" {
			milestones = append(milestones, n)
		}
	}
	require.Len(t, milestones, 1)
	assert.Equal(t, "evt-sale-student-10-milestone", milestones[0].ID)
	assert.Equal(t, "Congratulations! You reached 10 students.", milestones[0].Message)

	// A repeat purchase by an existing student never re-triggers it.
	env.buy(t, "student-10", product)
	require.NoError(t, srv.HandleStoreEvent(ctx, &service.StoreEvent{
		EventID:   "evt-sale-repeat",
		Type:      service.EventSaleRecorded,
		CreatorID: seedCreatorID,
		ActorID:   "student-10",
	}))

	feed, err = srv.Feed(ctx, seedCreatorID)
	require.NoError(t, err)
	assert.Len(t, feed.Items, 3+3+1+1)
}
