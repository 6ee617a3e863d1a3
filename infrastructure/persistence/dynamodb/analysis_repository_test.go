package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"moodi-backend/domain/core/entities"
	"moodi-backend/domain/core/valueobjects"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.GetItemOutput)
	return out, args.Error(1)
}

func (m *mockClient) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.PutItemOutput)
	return out, args.Error(1)
}

func (m *mockClient) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.UpdateItemOutput)
	return out, args.Error(1)
}

func (m *mockClient) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.DeleteItemOutput)
	return out, args.Error(1)
}

func (m *mockClient) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.QueryOutput)
	return out, args.Error(1)
}

func (m *mockClient) DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.DescribeTableOutput)
	return out, args.Error(1)
}

var fixedNow = time.Date(2024, 5, 10, 8, 30, 0, 0, time.UTC)

func newTestRepository(client *mockClient) *AnalysisRepository {
	return NewAnalysisRepository(client, "moodi", "", zap.NewNop(),
		WithClock(func() time.Time { return fixedNow }),
		WithLocation(time.UTC),
		WithIDGenerator(func() valueobjects.AnalysisID {
			id, _ := valueobjects.AnalysisIDFromString("fixed-id")
			return id
		}),
	)
}

func sampleAnalysis(id string, createdAt time.Time) *entities.ChainAnalysis {
	notes := "nota"
	return &entities.ChainAnalysis{
		ID:                 id,
		Title:              "Discusión",
		EventDate:          "2024-05-09",
		PrecipitatingEvent: "Llamada",
		PrimaryEmotion:     "ira",
		EmotionalIntensity: 7,
		ChainLinks: []entities.ChainLink{
			{ID: "l1", Type: valueobjects.LinkTypeThought, Content: "No me escucha", Order: 0},
		},
		Vulnerabilities: []string{"cansancio"},
		Interventions:   []string{},
		Notes:           &notes,
		CreatedAt:       createdAt,
	}
}

func marshalItem(t *testing.T, a *entities.ChainAnalysis, seq int64) map[string]types.AttributeValue {
	t.Helper()
	av, err := attributevalue.MarshalMap(toItem(a, seq))
	require.NoError(t, err)
	return av
}

func TestAnalysisRepository_ItemRoundTrip(t *testing.T) {
	repo := newTestRepository(&mockClient{})
	original := sampleAnalysis("abc", fixedNow)

	item := toItem(original, 42)
	assert.Equal(t, "ANALYSIS#abc", item.PK)
	assert.Equal(t, "METADATA", item.SK)
	assert.Equal(t, "ANALYSES", item.GSI1PK)
	assert.Equal(t, "01715329800000000000#00000000000000000042", item.GSI1SK)

	assert.Equal(t, original, repo.fromItem(item))
}

func TestAnalysisRepository_SortKeysOrderNewestFirst(t *testing.T) {
	earlier := toItem(sampleAnalysis("a", fixedNow), 9)
	later := toItem(sampleAnalysis("b", fixedNow.Add(time.Nanosecond)), 1)
	tieFirst := toItem(sampleAnalysis("c", fixedNow), 10)

	assert.Less(t, earlier.GSI1SK, later.GSI1SK)
	assert.Less(t, earlier.GSI1SK, tieFirst.GSI1SK)
	assert.Less(t, sortKeyPrefix(fixedNow), earlier.GSI1SK)
	assert.Less(t, tieFirst.GSI1SK, sortKeyPrefix(fixedNow.Add(time.Nanosecond)))
}

func TestAnalysisRepository_Create(t *testing.T) {
	ctx := context.Background()
	client := &mockClient{}
	repo := newTestRepository(client)

	client.On("UpdateItem", ctx, mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
		pk, _ := in.Key["PK"].(*types.AttributeValueMemberS)
		return pk != nil && pk.Value == counterPK && in.ReturnValues == types.ReturnValueUpdatedNew
	})).Return(&dynamodb.UpdateItemOutput{
		Attributes: map[string]types.AttributeValue{"Seq": &types.AttributeValueMemberN{Value: "7"}},
	}, nil)

	var saved analysisItem
	client.On("PutItem", ctx, mock.AnythingOfType("*dynamodb.PutItemInput")).
		Run(func(args mock.Arguments) {
			in := args.Get(1).(*dynamodb.PutItemInput)
			require.NoError(t, attributevalue.UnmarshalMap(in.Item, &saved))
			assert.NotNil(t, in.ConditionExpression)
		}).
		Return(&dynamodb.PutItemOutput{}, nil)

	empty := ""
	created, err := repo.Create(ctx, entities.NewChainAnalysis{
		Title:              "Nuevo",
		EventDate:          "2024-05-10",
		EventTime:          &empty,
		PrecipitatingEvent: "Algo",
		PrimaryEmotion:     "miedo",
		EmotionalIntensity: 4,
	})
	require.NoError(t, err)

	assert.Equal(t, "fixed-id", created.ID)
	assert.True(t, created.CreatedAt.Equal(fixedNow))
	assert.Nil(t, created.EventTime)
	assert.Equal(t, []string{}, created.Vulnerabilities)
	assert.Equal(t, "ANALYSIS#fixed-id", saved.PK)
	assert.Equal(t, int64(7), saved.Seq)
	assert.Equal(t, "Nuevo", saved.Title)
	client.AssertExpectations(t)
}

func TestAnalysisRepository_CreateRetriesOnCollision(t *testing.T) {
	ctx := context.Background()
	client := &mockClient{}
	repo := newTestRepository(client)

	client.On("UpdateItem", ctx, mock.Anything).Return(&dynamodb.UpdateItemOutput{
		Attributes: map[string]types.AttributeValue{"Seq": &types.AttributeValueMemberN{Value: "1"}},
	}, nil)
	client.On("PutItem", ctx, mock.Anything).
		Return(nil, &types.ConditionalCheckFailedException{}).Once()
	client.On("PutItem", ctx, mock.Anything).
		Return(&dynamodb.PutItemOutput{}, nil).Once()

	_, err := repo.Create(ctx, entities.NewChainAnalysis{Title: "t"})
	require.NoError(t, err)
	client.AssertNumberOfCalls(t, "PutItem", 2)
}

func TestAnalysisRepository_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		client := &mockClient{}
		repo := newTestRepository(client)
		stored := sampleAnalysis("abc", fixedNow)
		client.On("GetItem", ctx, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
			pk, _ := in.Key["PK"].(*types.AttributeValueMemberS)
			return pk != nil && pk.Value == "ANALYSIS#abc"
		})).Return(&dynamodb.GetItemOutput{Item: marshalItem(t, stored, 3)}, nil)

		got, err := repo.Get(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, stored, got)
	})

	t.Run("absent", func(t *testing.T) {
		client := &mockClient{}
		repo := newTestRepository(client)
		client.On("GetItem", ctx, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

		got, err := repo.Get(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("client error", func(t *testing.T) {
		client := &mockClient{}
		repo := newTestRepository(client)
		client.On("GetItem", ctx, mock.Anything).Return(nil, errors.New("throttled"))

		_, err := repo.Get(ctx, "abc")
		assert.ErrorContains(t, err, "throttled")
	})
}

func TestAnalysisRepository_GetAllPaginates(t *testing.T) {
	ctx := context.Background()
	client := &mockClient{}
	repo := newTestRepository(client)

	newest := sampleAnalysis("newest", fixedNow.Add(time.Hour))
	oldest := sampleAnalysis("oldest", fixedNow)
	pageKey := map[string]types.AttributeValue{"PK": &types.AttributeValueMemberS{Value: "ANALYSIS#newest"}}

	client.On("Query", ctx, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return in.ExclusiveStartKey == nil
	})).Return(&dynamodb.QueryOutput{
		Items:            []map[string]types.AttributeValue{marshalItem(t, newest, 2)},
		LastEvaluatedKey: pageKey,
	}, nil).Once()
	client.On("Query", ctx, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return in.ExclusiveStartKey != nil
	})).Return(&dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{marshalItem(t, oldest, 1)},
	}, nil).Once()

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "newest", all[0].ID)
	assert.Equal(t, "oldest", all[1].ID)

	first := client.Calls[0].Arguments.Get(1).(*dynamodb.QueryInput)
	assert.Equal(t, "GSI1", *first.IndexName)
	assert.False(t, *first.ScanIndexForward)
}

func TestAnalysisRepository_GetByMonthInvalidMonth(t *testing.T) {
	client := &mockClient{}
	repo := newTestRepository(client)

	got, err := repo.GetByMonth(context.Background(), 2024, 13)
	require.NoError(t, err)
	assert.Empty(t, got)
	client.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
}

func TestAnalysisRepository_Search(t *testing.T) {
	ctx := context.Background()
	client := &mockClient{}
	repo := newTestRepository(client)

	match := sampleAnalysis("match", fixedNow)
	match.Title = "Trabajo estresante"
	other := sampleAnalysis("other", fixedNow)
	other.Notes = nil
	client.On("Query", ctx, mock.Anything).Return(&dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{marshalItem(t, match, 2), marshalItem(t, other, 1)},
	}, nil)

	found, err := repo.Search(ctx, "ESTRES")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "match", found[0].ID)
}

func TestAnalysisRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("merges and keeps identity", func(t *testing.T) {
		client := &mockClient{}
		repo := newTestRepository(client)
		stored := sampleAnalysis("abc", fixedNow)
		client.On("GetItem", ctx, mock.Anything).Return(&dynamodb.GetItemOutput{Item: marshalItem(t, stored, 5)}, nil)

		var saved analysisItem
		client.On("PutItem", ctx, mock.Anything).
			Run(func(args mock.Arguments) {
				in := args.Get(1).(*dynamodb.PutItemInput)
				require.NoError(t, attributevalue.UnmarshalMap(in.Item, &saved))
			}).
			Return(&dynamodb.PutItemOutput{}, nil)

		title := "Editado"
		updated, err := repo.Update(ctx, "abc", entities.ChainAnalysisPatch{
			Title: &title,
			Notes: valueobjects.SetNull[string](),
		})
		require.NoError(t, err)
		assert.Equal(t, "Editado", updated.Title)
		assert.Nil(t, updated.Notes)
		assert.Equal(t, "abc", updated.ID)
		assert.True(t, updated.CreatedAt.Equal(fixedNow))
		assert.Equal(t, int64(5), saved.Seq)
		assert.Nil(t, saved.Notes)
	})

	t.Run("empty patch skips the write", func(t *testing.T) {
		client := &mockClient{}
		repo := newTestRepository(client)
		stored := sampleAnalysis("abc", fixedNow)
		client.On("GetItem", ctx, mock.Anything).Return(&dynamodb.GetItemOutput{Item: marshalItem(t, stored, 5)}, nil)

		updated, err := repo.Update(ctx, "abc", entities.ChainAnalysisPatch{})
		require.NoError(t, err)
		assert.Equal(t, stored, updated)
		client.AssertNotCalled(t, "PutItem", mock.Anything, mock.Anything)
	})

	t.Run("absent", func(t *testing.T) {
		client := &mockClient{}
		repo := newTestRepository(client)
		client.On("GetItem", ctx, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

		title := "x"
		updated, err := repo.Update(ctx, "missing", entities.ChainAnalysisPatch{Title: &title})
		require.NoError(t, err)
		assert.Nil(t, updated)
	})

	t.Run("deleted concurrently", func(t *testing.T) {
		client := &mockClient{}
		repo := newTestRepository(client)
		stored := sampleAnalysis("abc", fixedNow)
		client.On("GetItem", ctx, mock.Anything).Return(&dynamodb.GetItemOutput{Item: marshalItem(t, stored, 5)}, nil)
		client.On("PutItem", ctx, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{})

		title := "x"
		updated, err := repo.Update(ctx, "abc", entities.ChainAnalysisPatch{Title: &title})
		require.NoError(t, err)
		assert.Nil(t, updated)
	})
}

func TestAnalysisRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("removed", func(t *testing.T) {
		client := &mockClient{}
		repo := newTestRepository(client)
		client.On("DeleteItem", ctx, mock.MatchedBy(func(in *dynamodb.DeleteItemInput) bool {
			return in.ReturnValues == types.ReturnValueAllOld
		})).Return(&dynamodb.DeleteItemOutput{
			Attributes: marshalItem(t, sampleAnalysis("abc", fixedNow), 1),
		}, nil)

		removed, err := repo.Delete(ctx, "abc")
		require.NoError(t, err)
		assert.True(t, removed)
	})

	t.Run("absent", func(t *testing.T) {
		client := &mockClient{}
		repo := newTestRepository(client)
		client.On("DeleteItem", ctx, mock.Anything).Return(&dynamodb.DeleteItemOutput{}, nil)

		removed, err := repo.Delete(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, removed)
	})
}

func TestAnalysisRepository_Ping(t *testing.T) {
	client := &mockClient{}
	repo := newTestRepository(client)
	client.On("DescribeTable", mock.Anything, mock.Anything).Return(&dynamodb.DescribeTableOutput{}, nil)

	assert.NoError(t, repo.Ping(context.Background()))
}
