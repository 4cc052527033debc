package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/accessdesk/project-access/internal/core/domain"
	"github.com/accessdesk/project-access/internal/core/ports"
)

const requestsCollection = "accessrequests"

// RequestRepository stores access requests and serves the joined views used
// by admins, clients and the report export.
type RequestRepository struct {
	coll *mongo.Collection
}

func NewRequestRepository(db *mongo.Database) *RequestRepository {
	return &RequestRepository{coll: db.Collection(requestsCollection)}
}

type requestDocument struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty"`
	Project   primitive.ObjectID  `bson:"project"`
	Client    primitive.ObjectID  `bson:"client"`
	Status    string              `bson:"status"`
	DecidedBy *primitive.ObjectID `bson:"decidedBy"`
	CreatedAt time.Time           `bson:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt"`
}

func (d *requestDocument) toDomain() *domain.AccessRequest {
	return &domain.AccessRequest{
		ID:        d.ID.Hex(),
		ProjectID: d.Project.Hex(),
		ClientID:  d.Client.Hex(),
		Status:    domain.RequestStatus(d.Status),
		DecidedBy: hexPtr(d.DecidedBy),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type joinedProjectDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Location  string             `bson:"location"`
	Phone     string             `bson:"phone"`
	StartDate *time.Time         `bson:"startDate"`
	EndDate   *time.Time         `bson:"endDate"`
}

type joinedClientDocument struct {
	ID       primitive.ObjectID `bson:"_id"`
	Username string             `bson:"username"`
}

// joinedDocument is the shape produced by the lookup pipelines. Project and
// Client are absent when the referenced document no longer exists.
type joinedDocument struct {
	ID        primitive.ObjectID     `bson:"_id"`
	Project   *joinedProjectDocument `bson:"project"`
	Client    *joinedClientDocument  `bson:"client"`
	Status    string                 `bson:"status"`
	DecidedBy *primitive.ObjectID    `bson:"decidedBy"`
	CreatedAt time.Time              `bson:"createdAt"`
	UpdatedAt time.Time              `bson:"updatedAt"`
}

func (d *joinedDocument) toDomain() *domain.JoinedRequest {
	j := &domain.JoinedRequest{
		ID:        d.ID.Hex(),
		Status:    domain.RequestStatus(d.Status),
		DecidedBy: hexPtr(d.DecidedBy),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if p := d.Project; p != nil {
		j.Project = &domain.RequestProject{
			ID:        p.ID.Hex(),
			Name:      p.Name,
			Email:     p.Email,
			Location:  p.Location,
			Phone:     p.Phone,
			StartDate: p.StartDate,
			EndDate:   p.EndDate,
		}
	}
	if c := d.Client; c != nil {
		j.Client = &domain.RequestClient{ID: c.ID.Hex(), Username: c.Username}
	}
	return j
}

func hexPtr(id *primitive.ObjectID) *string {
	if id == nil || id.IsZero() {
		return nil
	}
	s := id.Hex()
	return &s
}

func (r *RequestRepository) Create(ctx context.Context, req *domain.AccessRequest) (*domain.AccessRequest, error) {
	pid, ok := objectID(req.ProjectID)
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	cid, ok := objectID(req.ClientID)
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := requestDocument{
		ID:        primitive.NewObjectID(),
		Project:   pid,
		Client:    cid,
		Status:    string(req.Status),
		CreatedAt: req.CreatedAt,
		UpdatedAt: req.UpdatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert access request: %w", err)
	}
	return doc.toDomain(), nil
}

// SetDecision updates status and decidedBy in one document write and reports
// the status the request had before.
func (r *RequestRepository) SetDecision(ctx context.Context, id string, status domain.RequestStatus, decidedBy string) (domain.RequestStatus, *domain.AccessRequest, error) {
	oid, ok := objectID(id)
	if !ok {
		return "", nil, domain.ErrRequestNotFound
	}
	by, ok := objectID(decidedBy)
	if !ok {
		return "", nil, domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"status":    string(status),
		"decidedBy": by,
		"updatedAt": now,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var doc requestDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", nil, domain.ErrRequestNotFound
		}
		return "", nil, fmt.Errorf("set decision: %w", err)
	}

	prev := domain.RequestStatus(doc.Status)
	doc.Status = string(status)
	doc.DecidedBy = &by
	doc.UpdatedAt = now
	return prev, doc.toDomain(), nil
}

// ListPendingJoined joins the full project and the client's username.
func (r *RequestRepository) ListPendingJoined(ctx context.Context) ([]*domain.JoinedRequest, error) {
	pipeline := joinPipeline(
		bson.M{"status": string(domain.StatusPending)},
		[]string{"name", "email", "location", "phone", "startDate", "endDate"},
		true,
	)
	return r.aggregateAll(ctx, pipeline)
}

// ListByClientJoined joins the project's name and location for one client.
func (r *RequestRepository) ListByClientJoined(ctx context.Context, clientID string) ([]*domain.JoinedRequest, error) {
	cid, ok := objectID(clientID)
	if !ok {
		return []*domain.JoinedRequest{}, nil
	}
	pipeline := joinPipeline(bson.M{"client": cid}, []string{"name", "location"}, false)
	pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}})
	return r.aggregateAll(ctx, pipeline)
}

// StreamAllJoined opens a newest-first cursor. It carries no query timeout;
// the caller's context bounds it.
func (r *RequestRepository) StreamAllJoined(ctx context.Context) (ports.JoinedRequestCursor, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
	}
	pipeline = append(pipeline, joinPipeline(nil, []string{"name", "email"}, true)...)

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate report: %w", err)
	}
	return &joinedCursor{cur: cur}, nil
}

func (r *RequestRepository) DeleteByClient(ctx context.Context, clientID string) (int64, error) {
	cid, ok := objectID(clientID)
	if !ok {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.M{"client": cid})
	if err != nil {
		return 0, fmt.Errorf("delete client requests: %w", err)
	}
	return res.DeletedCount, nil
}

// ListMissingGrants finds APPROVED requests whose project still exists but
// does not list the client in clientsWithAccess.
func (r *RequestRepository) ListMissingGrants(ctx context.Context) ([]domain.GrantRepair, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": string(domain.StatusApproved)}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         projectsCollection,
			"localField":   "project",
			"foreignField": "_id",
			"as":           "p",
		}}},
		{{Key: "$unwind", Value: "$p"}},
		{{Key: "$match", Value: bson.M{"$expr": bson.M{
			"$not": bson.A{bson.M{"$in": bson.A{"$client", bson.M{"$ifNull": bson.A{"$p.clientsWithAccess", bson.A{}}}}}},
		}}}},
		{{Key: "$project", Value: bson.M{"project": 1, "client": 1}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate missing grants: %w", err)
	}

	var docs []requestDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode missing grants: %w", err)
	}
	out := make([]domain.GrantRepair, len(docs))
	for i, d := range docs {
		out[i] = domain.GrantRepair{RequestID: d.ID.Hex(), ProjectID: d.Project.Hex(), ClientID: d.Client.Hex()}
	}
	return out, nil
}

func (r *RequestRepository) aggregateAll(ctx context.Context, pipeline mongo.Pipeline) ([]*domain.JoinedRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate requests: %w", err)
	}

	var docs []joinedDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode requests: %w", err)
	}
	out := make([]*domain.JoinedRequest, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	return out, nil
}

// joinPipeline matches (when match is non-nil), looks up the project and
// optionally the client, and keeps only the listed project fields plus the
// client's username. Unmatched references are kept as missing fields.
func joinPipeline(match bson.M, projectFields []string, withClient bool) mongo.Pipeline {
	var p mongo.Pipeline
	if match != nil {
		p = append(p, bson.D{{Key: "$match", Value: match}})
	}

	p = append(p,
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         projectsCollection,
			"localField":   "project",
			"foreignField": "_id",
			"as":           "project",
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{"path": "$project", "preserveNullAndEmptyArrays": true}}},
	)

	keep := bson.M{
		"status":      1,
		"decidedBy":   1,
		"createdAt":   1,
		"updatedAt":   1,
		"project._id": 1,
	}
	for _, f := range projectFields {
		keep["project."+f] = 1
	}

	if withClient {
		p = append(p,
			bson.D{{Key: "$lookup", Value: bson.M{
				"from":         usersCollection,
				"localField":   "client",
				"foreignField": "_id",
				"as":           "client",
			}}},
			bson.D{{Key: "$unwind", Value: bson.M{"path": "$client", "preserveNullAndEmptyArrays": true}}},
		)
		keep["client._id"] = 1
		keep["client.username"] = 1
	}

	return append(p, bson.D{{Key: "$project", Value: keep}})
}

// EnsureIndexes creates the indexes behind the pending, per-client and
// report queries.
func (r *RequestRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "client", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	return err
}

// joinedCursor adapts a driver cursor to ports.JoinedRequestCursor.
type joinedCursor struct {
	cur *mongo.Cursor
}

func (c *joinedCursor) Next(ctx context.Context) bool { return c.cur.Next(ctx) }

func (c *joinedCursor) Current() (*domain.JoinedRequest, error) {
	var doc joinedDocument
	if err := c.cur.Decode(&doc); err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (c *joinedCursor) Err() error { return c.cur.Err() }

func (c *joinedCursor) Close(ctx context.Context) error { return c.cur.Close(ctx) }
