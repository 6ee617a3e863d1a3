package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"moodi-backend/application/ports"
	"moodi-backend/domain/core/entities"
	"moodi-backend/domain/core/valueobjects"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const (
	entityType     = "ANALYSIS"
	listPartition  = "ANALYSES"
	metadataSK     = "METADATA"
	counterPK      = "COUNTER#ANALYSES"
	counterSK      = "COUNTER"
	counterAttr    = "Seq"
	DefaultIndex   = "GSI1"
	sortKeyPattern = "%020d#%020d"
)

var (
	_ ports.AnalysisRepository = (*AnalysisRepository)(nil)
	_ ports.HealthChecker      = (*AnalysisRepository)(nil)
)

// Client is the subset of the DynamoDB API the repository uses
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// AnalysisRepository stores chain analyses in a single DynamoDB table.
//
// Each record lives under PK=ANALYSIS#<id>, SK=METADATA. Every record also
// carries GSI1PK=ANALYSES and a GSI1SK built from the creation time in unix
// nanoseconds and a table-wide insertion counter, both zero padded, so a
// descending query on the index yields newest first with later insertions
// winning ties.
type AnalysisRepository struct {
	client    Client
	tableName string
	indexName string
	logger    *zap.Logger
	now       func() time.Time
	newID     func() valueobjects.AnalysisID
	loc       *time.Location
}

// Option configures an AnalysisRepository
type Option func(*AnalysisRepository)

// WithClock overrides the clock used to stamp CreatedAt
func WithClock(now func() time.Time) Option {
	return func(r *AnalysisRepository) { r.now = now }
}

// WithLocation sets the zone used to decide calendar months
func WithLocation(loc *time.Location) Option {
	return func(r *AnalysisRepository) { r.loc = loc }
}

// WithIDGenerator overrides id generation
func WithIDGenerator(gen func() valueobjects.AnalysisID) Option {
	return func(r *AnalysisRepository) { r.newID = gen }
}

// NewAnalysisRepository creates a new AnalysisRepository
func NewAnalysisRepository(client Client, tableName, indexName string, logger *zap.Logger, opts ...Option) *AnalysisRepository {
	if indexName == "" {
		indexName = DefaultIndex
	}
	r := &AnalysisRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
		now:       time.Now,
		newID:     valueobjects.NewAnalysisID,
		loc:       time.Local,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// analysisItem represents the DynamoDB item structure for a chain analysis
type analysisItem struct {
	PK                 string          `dynamodbav:"PK"`
	SK                 string          `dynamodbav:"SK"`
	GSI1PK             string          `dynamodbav:"GSI1PK"`
	GSI1SK             string          `dynamodbav:"GSI1SK"`
	EntityType         string          `dynamodbav:"EntityType"`
	ID                 string          `dynamodbav:"ID"`
	Title              string          `dynamodbav:"Title"`
	EventDate          string          `dynamodbav:"EventDate"`
	EventTime          *string         `dynamodbav:"EventTime,omitempty"`
	PrecipitatingEvent string          `dynamodbav:"PrecipitatingEvent"`
	PrimaryEmotion     string          `dynamodbav:"PrimaryEmotion"`
	EmotionalIntensity int             `dynamodbav:"EmotionalIntensity"`
	ChainLinks         []chainLinkItem `dynamodbav:"ChainLinks"`
	Vulnerabilities    []string        `dynamodbav:"Vulnerabilities"`
	Interventions      []string        `dynamodbav:"Interventions"`
	WellnessScore      *int            `dynamodbav:"WellnessScore,omitempty"`
	Notes              *string         `dynamodbav:"Notes,omitempty"`
	CreatedAt          string          `dynamodbav:"CreatedAt"`
	CreatedAtNanos     int64           `dynamodbav:"CreatedAtNanos"`
	Seq                int64           `dynamodbav:"Seq"`
}

type chainLinkItem struct {
	ID      string `dynamodbav:"ID"`
	Type    string `dynamodbav:"Type"`
	Content string `dynamodbav:"Content"`
	Order   int    `dynamodbav:"Order"`
}

func analysisKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("%s#%s", entityType, id)},
		"SK": &types.AttributeValueMemberS{Value: metadataSK},
	}
}

func sortKeyPrefix(t time.Time) string {
	return fmt.Sprintf("%020d", t.UnixNano())
}

func toItem(a *entities.ChainAnalysis, seq int64) analysisItem {
	links := make([]chainLinkItem, len(a.ChainLinks))
	for i, l := range a.ChainLinks {
		links[i] = chainLinkItem{ID: l.ID, Type: string(l.Type), Content: l.Content, Order: l.Order}
	}
	return analysisItem{
		PK:                 fmt.Sprintf("%s#%s", entityType, a.ID),
		SK:                 metadataSK,
		GSI1PK:             listPartition,
		GSI1SK:             fmt.Sprintf(sortKeyPattern, a.CreatedAt.UnixNano(), seq),
		EntityType:         entityType,
		ID:                 a.ID,
		Title:              a.Title,
		EventDate:          a.EventDate,
		EventTime:          a.EventTime,
		PrecipitatingEvent: a.PrecipitatingEvent,
		PrimaryEmotion:     a.PrimaryEmotion,
		EmotionalIntensity: a.EmotionalIntensity,
		ChainLinks:         links,
		Vulnerabilities:    append([]string{}, a.Vulnerabilities...),
		Interventions:      append([]string{}, a.Interventions...),
		WellnessScore:      a.WellnessScore,
		Notes:              a.Notes,
		CreatedAt:          a.CreatedAt.UTC().Format(time.RFC3339Nano),
		CreatedAtNanos:     a.CreatedAt.UnixNano(),
		Seq:                seq,
	}
}

func (r *AnalysisRepository) fromItem(item analysisItem) *entities.ChainAnalysis {
	links := make([]entities.ChainLink, len(item.ChainLinks))
	for i, l := range item.ChainLinks {
		links[i] = entities.ChainLink{ID: l.ID, Type: valueobjects.LinkType(l.Type), Content: l.Content, Order: l.Order}
	}
	a := &entities.ChainAnalysis{
		ID:                 item.ID,
		Title:              item.Title,
		EventDate:          item.EventDate,
		EventTime:          item.EventTime,
		PrecipitatingEvent: item.PrecipitatingEvent,
		PrimaryEmotion:     item.PrimaryEmotion,
		EmotionalIntensity: item.EmotionalIntensity,
		ChainLinks:         links,
		Vulnerabilities:    append([]string{}, item.Vulnerabilities...),
		Interventions:      append([]string{}, item.Interventions...),
		WellnessScore:      item.WellnessScore,
		Notes:              item.Notes,
		CreatedAt:          time.Unix(0, item.CreatedAtNanos).In(r.loc),
	}
	return a
}

func (r *AnalysisRepository) getItem(ctx context.Context, id string) (*analysisItem, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            analysisKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	if len(result.Item) == 0 {
		return nil, nil
	}
	var item analysisItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
	}
	return &item, nil
}

// Get returns the record with the given id, or nil
func (r *AnalysisRepository) Get(ctx context.Context, id string) (*entities.ChainAnalysis, error) {
	item, err := r.getItem(ctx, id)
	if err != nil || item == nil {
		return nil, err
	}
	return r.fromItem(*item), nil
}

// GetAll returns every record, newest first
func (r *AnalysisRepository) GetAll(ctx context.Context) ([]*entities.ChainAnalysis, error) {
	return r.queryIndex(ctx, expression.Key("GSI1PK").Equal(expression.Value(listPartition)))
}

// GetByMonth returns the records created in year/month of the repository zone
func (r *AnalysisRepository) GetByMonth(ctx context.Context, year, month int) ([]*entities.ChainAnalysis, error) {
	start, end, ok := entities.MonthWindow(year, month, r.loc)
	if !ok {
		return []*entities.ChainAnalysis{}, nil
	}
	// Between is inclusive; a bare prefix sorts before every key sharing it,
	// so the end bound excludes records stamped exactly at end.
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(listPartition)).
		And(expression.Key("GSI1SK").Between(expression.Value(sortKeyPrefix(start)), expression.Value(sortKeyPrefix(end))))
	return r.queryIndex(ctx, keyCond)
}

// Search returns the records matching query, newest first
func (r *AnalysisRepository) Search(ctx context.Context, query string) ([]*entities.ChainAnalysis, error) {
	all, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]*entities.ChainAnalysis, 0, len(all))
	for _, a := range all {
		if a.Matches(query) {
			matched = append(matched, a)
		}
	}
	return matched, nil
}

func (r *AnalysisRepository) queryIndex(ctx context.Context, keyCond expression.KeyConditionBuilder) ([]*entities.ChainAnalysis, error) {
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	out := make([]*entities.ChainAnalysis, 0)
	var startKey map[string]types.AttributeValue
	for {
		result, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String(r.indexName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ScanIndexForward:          aws.Bool(false),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query analyses: %w", err)
		}

		var items []analysisItem
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal analyses: %w", err)
		}
		for _, item := range items {
			out = append(out, r.fromItem(item))
		}

		if len(result.LastEvaluatedKey) == 0 {
			return out, nil
		}
		startKey = result.LastEvaluatedKey
	}
}

func (r *AnalysisRepository) nextSeq(ctx context.Context) (int64, error) {
	update := expression.Add(expression.Name(counterAttr), expression.Value(1))
	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return 0, fmt.Errorf("failed to build expression: %w", err)
	}

	result, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: counterPK},
			"SK": &types.AttributeValueMemberS{Value: counterSK},
		},
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence: %w", err)
	}

	n, ok := result.Attributes[counterAttr].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("sequence counter missing from response")
	}
	seq, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid sequence value %q: %w", n.Value, err)
	}
	return seq, nil
}

func (r *AnalysisRepository) put(ctx context.Context, item analysisItem, cond expression.ConditionBuilder) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.tableName),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	return err
}

// Create stores a new record. The put is conditional on the key being free,
// so an id collision is retried with a fresh id.
func (r *AnalysisRepository) Create(ctx context.Context, input entities.NewChainAnalysis) (*entities.ChainAnalysis, error) {
	seq, err := r.nextSeq(ctx)
	if err != nil {
		return nil, err
	}
	createdAt := r.now().Round(0).In(r.loc)

	const maxAttempts = 3
	for attempt := 1; ; attempt++ {
		analysis := entities.NewChainAnalysisRecord(r.newID(), input, createdAt)
		err := r.put(ctx, toItem(analysis, seq), expression.Name("PK").AttributeNotExists())
		if err == nil {
			r.logger.Debug("Analysis created",
				zap.String("analysisID", analysis.ID),
				zap.Int64("seq", seq),
			)
			return analysis, nil
		}

		var ccf *types.ConditionalCheckFailedException
		if !errors.As(err, &ccf) || attempt == maxAttempts {
			return nil, fmt.Errorf("failed to save analysis: %w", err)
		}
		r.logger.Warn("Analysis id collision, retrying", zap.String("analysisID", analysis.ID))
	}
}

// Update merges patch into the stored record. The write is conditional on the
// item still existing; losing that race reads as not found.
func (r *AnalysisRepository) Update(ctx context.Context, id string, patch entities.ChainAnalysisPatch) (*entities.ChainAnalysis, error) {
	item, err := r.getItem(ctx, id)
	if err != nil || item == nil {
		return nil, err
	}
	analysis := r.fromItem(*item)
	if patch.IsEmpty() {
		return analysis, nil
	}

	analysis.Apply(patch)
	err = r.put(ctx, toItem(analysis, item.Seq), expression.Name("PK").AttributeExists())
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update analysis: %w", err)
	}

	r.logger.Debug("Analysis updated", zap.String("analysisID", id))
	return analysis, nil
}

// Delete removes the record and reports whether one existed
func (r *AnalysisRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(r.tableName),
		Key:          analysisKey(id),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete analysis: %w", err)
	}

	removed := len(result.Attributes) > 0
	if removed {
		r.logger.Debug("Analysis deleted", zap.String("analysisID", id))
	}
	return removed, nil
}

// Ping checks that the table is reachable
func (r *AnalysisRepository) Ping(ctx context.Context) error {
	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return fmt.Errorf("failed to describe table: %w", err)
	}
	return nil
}
