package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thinkex/clusters-api/internal/domain"
	"github.com/thinkex/clusters-api/internal/events"
)

func newTestCoordinator(t *testing.T) (*Coordinator, *fakeRepository, *recordingDispatcher) {
	t.Helper()
	repo := newFakeRepository()
	dispatcher := &recordingDispatcher{}
	return NewCoordinator(repo, dispatcher, nil), repo, dispatcher
}

func createList(t *testing.T, c *Coordinator, title string) *domain.ClusterList {
	t.Helper()
	list, err := c.CreateClusterList(context.Background(), title)
	require.NoError(t, err)
	return list
}

func qaContent(question, answer string) CardContent {
	return CardContent{Kind: domain.CardKindQA, Question: question, Answer: answer}
}

func TestAddCardCreatesClusterOnFirstUse(t *testing.T) {
	t.Parallel()
	c, _, dispatcher := newTestCoordinator(t)
	ctx := context.Background()
	list := createList(t, c, "Study")

	result, err := c.AddCard(ctx, list.ID, "Algebra", qaContent("What is x?", "A variable."))
	require.NoError(t, err)
	assert.True(t, result.ClusterCreated)
	assert.Equal(t, `Added Q/A to cluster "Algebra".`, result.Message)
	require.Len(t, result.Cluster.Cards, 1)
	assert.Equal(t, 0, result.Cluster.Cards[0].Position)

	require.Equal(t, []events.Action{events.ActionClusterCreated}, dispatcher.actions())
	assert.Equal(t, list.ID, dispatcher.events[0].ListID)
}

func TestAddCardReusesClusterAcrossCasingVariants(t *testing.T) {
	t.Parallel()
	c, _, dispatcher := newTestCoordinator(t)
	ctx := context.Background()
	list := createList(t, c, "Study")

	first, err := c.AddCard(ctx, list.ID, "Algebra", qaContent("q1", "a1"))
	require.NoError(t, err)
	require.True(t, first.ClusterCreated)

	second, err := c.AddCard(ctx, list.ID, "  ALGEBRA  ", qaContent("q2", "a2"))
	require.NoError(t, err)
	assert.False(t, second.ClusterCreated)
	assert.Equal(t, first.Cluster.ID, second.Cluster.ID)
	assert.Equal(t, "Algebra", second.Cluster.Title, "first writer's casing wins")
	require.Len(t, second.Cluster.Cards, 2)
	assert.Equal(t, 1, second.Cluster.Cards[1].Position, "appended at max position + 1")

	assert.Equal(t,
		[]events.Action{events.ActionClusterCreated, events.ActionQAAdded},
		dispatcher.actions())
}

func TestAddCardValidation(t *testing.T) {
	t.Parallel()
	c, _, dispatcher := newTestCoordinator(t)
	ctx := context.Background()
	list := createList(t, c, "Study")

	cases := []struct {
		name    string
		title   string
		content CardContent
	}{
		{"empty cluster title", "   ", qaContent("q", "a")},
		{"empty question", "Algebra", qaContent("   ", "a")},
		{"empty answer", "Algebra", qaContent("q", "")},
		{"unknown kind", "Algebra", CardContent{Kind: "poem", Question: "q", Answer: "a"}},
		{"empty source content", "Algebra", CardContent{Kind: domain.CardKindSourceNote}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.AddCard(ctx, list.ID, tc.title, tc.content)
			assert.True(t, IsValidationError(err), "expected validation error, got %v", err)
		})
	}

	assert.Zero(t, dispatcher.count(), "failed operations must not emit events")
}

func TestAddCardUnknownListNotFound(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestCoordinator(t)

	_, err := c.AddCard(context.Background(), uuid.New(), "Algebra", qaContent("q", "a"))
	assert.True(t, IsNotFoundError(err))
}

func TestAddSourceNoteCard(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestCoordinator(t)
	ctx := context.Background()
	list := createList(t, c, "Study")

	result, err := c.AddCard(ctx, list.ID, "Sources", CardContent{
		Kind:           domain.CardKindSourceNote,
		SourceMetadata: "Chapter 3",
		SourceContent:  "Linear equations overview",
	})
	require.NoError(t, err)
	assert.Equal(t, `Added source note to cluster "Sources".`, result.Message)
	require.Len(t, result.Cluster.Cards, 1)
	assert.Equal(t, domain.CardKindSourceNote, result.Cluster.Cards[0].Kind)
}

func TestConcurrentAddCardRaceCreatesOneCluster(t *testing.T) {
	t.Parallel()
	c, repo, dispatcher := newTestCoordinator(t)
	ctx := context.Background()
	list := createList(t, c, "Study")

	const writers = 16
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			_, err := c.AddCard(ctx, list.ID, "Geometry", qaContent("q", "a"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	clusters, err := repo.Clusters().ListByList(ctx, list.ID)
	require.NoError(t, err)
	require.Len(t, clusters, 1, "exactly one cluster wins the creation race")

	created := 0
	for _, action := range dispatcher.actions() {
		if action == events.ActionClusterCreated {
			created++
		}
	}
	assert.Equal(t, 1, created)

	cards, err := repo.Cards().ListByCluster(ctx, clusters[0].ID)
	require.NoError(t, err)
	require.Len(t, cards, writers)
	seen := make(map[int]bool)
	for _, card := range cards {
		assert.False(t, seen[card.Position], "duplicate position %d", card.Position)
		seen[card.Position] = true
	}
}

func TestUpdateCardNoChangesIsReportedNoOp(t *testing.T) {
	t.Parallel()
	c, _, dispatcher := newTestCoordinator(t)
	ctx := context.Background()
	list := createList(t, c, "Study")

	added, err := c.AddCard(ctx, list.ID, "Algebra", qaContent("What is x?", "A variable."))
	require.NoError(t, err)
	cardID := added.Cluster.Cards[0].ID
	before := dispatcher.count()

	question := "  What is x?  "
	answer := "A variable."
	result, err := c.UpdateCard(ctx, list.ID, "Algebra", cardID, &question, &answer)
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Equal(t, "No changes detected.", result.Message)
	assert.Equal(t, before, dispatcher.count(), "no-op must not emit an event")
}

func TestUpdateCardAppliesChangedFields(t *testing.T) {
	t.Parallel()
	c, _, dispatcher := newTestCoordinator(t)
	ctx := context.Background()
	list := createList(t, c, "Study")

	added, err := c.AddCard(ctx, list.ID, "Algebra", qaContent("What is x?", "A variable."))
	require.NoError(t, err)
	cardID := added.Cluster.Cards[0].ID

	newAnswer := "An unknown to solve for."
	empty := "   "
	result, err := c.UpdateCard(ctx, list.ID, "algebra", cardID, &empty, &newAnswer)
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, `Updated Q/A in cluster "Algebra".`, result.Message)
	assert.Equal(t, "What is x?", result.Card.Question, "empty-after-trim field is not provided, never a clear")
	assert.Equal(t, "An unknown to solve for.", result.Card.Answer)

	actions := dispatcher.actions()
	assert.Equal(t, events.ActionQAUpdated, actions[len(actions)-1])
}

func TestUpdateCardRequiresAtLeastOneField(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestCoordinator(t)
	ctx := context.Background()
	list := createList(t, c, "Study")

	_, err := c.UpdateCard(ctx, list.ID, "Algebra", uuid.New(), nil, nil)
	assert.True(t, IsValidationError(err))
}

func TestUpdateCardNotInNamedCluster(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestCoordinator(t)
	ctx := context.Background()
	list := createList(t, c, "Study")

	added, err := c.AddCard(ctx, list.ID, "Algebra", qaContent("q", "a"))
	require.NoError(t, err)
	_, err = c.AddCard(ctx, list.ID, "Geometry", qaContent("q2", "a2"))
	require.NoError(t, err)

	question := "changed"
	_, err = c.UpdateCard(ctx, list.ID, "Geometry", added.Cluster.Cards[0].ID, &question, nil)
	assert.True(t, IsNotFoundError(err))
}

func TestMoveCardToOwnClusterIsIdempotentNoOp(t *testing.T) {
	t.Parallel()
	c, _, dispatcher := newTestCoordinator(t)
	ctx := context.Background()
	list := createList(t, c, "Study")

	added, err := c.AddCard(ctx, list.ID, "Algebra", qaContent("q", "a"))
	require.NoError(t, err)
	cardID := added.Cluster.Cards[0].ID
	before := dispatcher.count()

	for i := 0; i < 2; i++ {
		result, err := c.MoveCard(ctx, list.ID, cardID, "  algebra ")
		require.NoError(t, err)
		assert.False(t, result.Moved)
		assert.Equal(t,
			"Source and destination clusters are the same. No action taken.",
			result.Message)
	}
	assert.Equal(t, before, dispatcher.count())
}

func TestMoveCardBetweenClusters(t *testing.T) {
	t.Parallel()
	c, repo, dispatcher := newTestCoordinator(t)
	ctx := context.Background()
	list := createList(t, c, "Study")

	source, err := c.AddCard(ctx, list.ID, "Algebra", qaContent("q", "a"))
	require.NoError(t, err)
	_, err = c.AddCard(ctx, list.ID, "Geometry", qaContent("q2", "a2"))
	require.NoError(t, err)

	cardID := source.Cluster.Cards[0].ID
	result, err := c.MoveCard(ctx, list.ID, cardID, "geometry")
	require.NoError(t, err)
	assert.True(t, result.Moved)
	assert.Equal(t, "Moved Q/A from 'Algebra' to 'Geometry'.", result.Message)

	moved, err := repo.Cards().GetByID(ctx, cardID)
	require.NoError(t, err)
	dest, err := repo.Clusters().FindByTitle(ctx, list.ID, "Geometry")
	require.NoError(t, err)
	assert.Equal(t, dest.ID, moved.ClusterID)
	assert.Equal(t, 1, moved.Position, "appended after the destination's existing card")

	actions := dispatcher.actions()
	assert.Equal(t, events.ActionClusterListUpdated, actions[len(actions)-1])
	assert.Equal(t, events.TypeClusterListUpdate, dispatcher.events[len(actions)-1].Type)
}

func TestMoveCardUnknownDestination(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestCoordinator(t)
	ctx := context.Background()
	list := createList(t, c, "Study")

	added, err := c.AddCard(ctx, list.ID, "Algebra", qaContent("q", "a"))
	require.NoError(t, err)

	_, err = c.MoveCard(ctx, list.ID, added.Cluster.Cards[0].ID, "Calculus")
	assert.True(t, IsNotFoundError(err))
}

func TestDeleteCardRemovesFromCluster(t *testing.T) {
	t.Parallel()
	c, repo, dispatcher := newTestCoordinator(t)
	ctx := context.Background()
	list := createList(t, c, "Study")

	added, err := c.AddCard(ctx, list.ID, "Algebra", qaContent("q", "a"))
	require.NoError(t, err)
	cardID := added.Cluster.Cards[0].ID

	result, err := c.DeleteCard(ctx, list.ID, "Algebra", cardID)
	require.NoError(t, err)
	assert.Equal(t, `Deleted Q/A from cluster "Algebra".`, result.Message)

	_, err = repo.Cards().GetByID(ctx, cardID)
	assert.True(t, IsNotFoundError(err))

	actions := dispatcher.actions()
	assert.Equal(t, events.ActionQADeleted, actions[len(actions)-1])
}

func TestDeleteClusterCascadesToCards(t *testing.T) {
	t.Parallel()
	c, repo, dispatcher := newTestCoordinator(t)
	ctx := context.Background()
	list := createList(t, c, "Study")

	added, err := c.AddCard(ctx, list.ID, "Algebra", qaContent("q", "a"))
	require.NoError(t, err)
	cardID := added.Cluster.Cards[0].ID

	result, err := c.DeleteCluster(ctx, list.ID, "ALGEBRA")
	require.NoError(t, err)
	assert.Equal(t, `Deleted cluster "Algebra".`, result.Message)

	_, err = repo.Clusters().FindByTitle(ctx, list.ID, "algebra")
	assert.True(t, IsNotFoundError(err))
	_, err = repo.Cards().GetByID(ctx, cardID)
	assert.True(t, IsNotFoundError(err))

	actions := dispatcher.actions()
	assert.Equal(t, events.ActionClusterDeleted, actions[len(actions)-1])
}

func TestReorderCardsRejectsMismatchedSet(t *testing.T) {
	t.Parallel()
	c, _, dispatcher := newTestCoordinator(t)
	ctx := context.Background()
	list := createList(t, c, "Study")

	added, err := c.AddCard(ctx, list.ID, "Algebra", qaContent("q1", "a1"))
	require.NoError(t, err)
	second, err := c.AddCard(ctx, list.ID, "Algebra", qaContent("q2", "a2"))
	require.NoError(t, err)

	first := added.Cluster.Cards[0].ID
	other := second.Cluster.Cards[1].ID
	before := dispatcher.count()

	cases := [][]uuid.UUID{
		{first},                      // missing one
		{first, other, uuid.New()},   // extra id
		{first, uuid.New()},          // swapped for a stranger
		{first, first},               // duplicate hides a missing id
	}
	for _, ids := range cases {
		_, err := c.ReorderCards(ctx, list.ID, "Algebra", ids)
		assert.True(t, IsValidationError(err), "ids %v", ids)
		assert.EqualError(t, err, "Mismatched QA items during reorder")
	}
	assert.Equal(t, before, dispatcher.count())
}

func TestReorderCardsPersistsNewPositions(t *testing.T) {
	t.Parallel()
	c, repo, dispatcher := newTestCoordinator(t)
	ctx := context.Background()
	list := createList(t, c, "Study")

	_, err := c.AddCard(ctx, list.ID, "Algebra", qaContent("q1", "a1"))
	require.NoError(t, err)
	res, err := c.AddCard(ctx, list.ID, "Algebra", qaContent("q2", "a2"))
	require.NoError(t, err)

	first := res.Cluster.Cards[0].ID
	second := res.Cluster.Cards[1].ID

	result, err := c.ReorderCards(ctx, list.ID, "Algebra", []uuid.UUID{second, first})
	require.NoError(t, err)
	assert.Equal(t, "QAs in cluster 'Algebra' reordered successfully.", result.Message)

	cluster, err := repo.Clusters().FindByTitle(ctx, list.ID, "Algebra")
	require.NoError(t, err)
	cards, err := repo.Cards().ListByCluster(ctx, cluster.ID)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, second, cards[0].ID)
	assert.Equal(t, first, cards[1].ID)

	actions := dispatcher.actions()
	assert.Equal(t, events.ActionClusterListUpdated, actions[len(actions)-1])
}

func TestCreateClusterListEmitsNoEvent(t *testing.T) {
	t.Parallel()
	c, _, dispatcher := newTestCoordinator(t)

	list, err := c.CreateClusterList(context.Background(), "  Study  ")
	require.NoError(t, err)
	assert.Equal(t, "Study", list.Title)
	assert.Zero(t, dispatcher.count())

	_, err = c.CreateClusterList(context.Background(), "   ")
	assert.True(t, IsValidationError(err))
}

func TestEnsureDefaultClusterList(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestCoordinator(t)
	ctx := context.Background()

	created, err := c.EnsureDefaultClusterList(ctx)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, DefaultClusterListTitle, created.Title)

	again, err := c.EnsureDefaultClusterList(ctx)
	require.NoError(t, err)
	assert.Nil(t, again, "no second default once a list exists")
}

func TestGetClusterListSnapshot(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestCoordinator(t)
	ctx := context.Background()
	list := createList(t, c, "Study")

	_, err := c.AddCard(ctx, list.ID, "Algebra", qaContent("q1", "a1"))
	require.NoError(t, err)
	_, err = c.AddCard(ctx, list.ID, "Geometry", qaContent("q2", "a2"))
	require.NoError(t, err)

	view, err := c.GetClusterList(ctx, list.ID)
	require.NoError(t, err)
	assert.Equal(t, "Study", view.Title)
	require.Len(t, view.Clusters, 2)
	assert.Equal(t, "Algebra", view.Clusters[0].Title)
	require.Len(t, view.Clusters[0].Cards, 1)

	_, err = c.GetClusterList(ctx, uuid.New())
	assert.True(t, IsNotFoundError(err))
}

func TestGetFirstClusterList(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestCoordinator(t)
	ctx := context.Background()

	_, err := c.GetFirstClusterList(ctx)
	assert.True(t, IsNotFoundError(err))
	assert.EqualError(t, err, "No cluster lists found.")

	first := createList(t, c, "First")
	createList(t, c, "Second")

	view, err := c.GetFirstClusterList(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, view.ID)
}

func TestListClusterListInfo(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestCoordinator(t)
	ctx := context.Background()

	createList(t, c, "First")
	createList(t, c, "Second")

	infos, err := c.ListClusterListInfo(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "First", infos[0].Title)
	assert.Equal(t, "Second", infos[1].Title)
}
