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
)

const projectsCollection = "projects"

type ProjectRepository struct {
	coll *mongo.Collection
}

func NewProjectRepository(db *mongo.Database) *ProjectRepository {
	return &ProjectRepository{coll: db.Collection(projectsCollection)}
}

type projectDocument struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty"`
	Name              string               `bson:"name"`
	Location          string               `bson:"location"`
	Phone             string               `bson:"phone"`
	Email             string               `bson:"email"`
	StartDate         time.Time            `bson:"startDate"`
	EndDate           time.Time            `bson:"endDate"`
	CreatedBy         primitive.ObjectID   `bson:"createdBy,omitempty"`
	ClientsWithAccess []primitive.ObjectID `bson:"clientsWithAccess"`
	CreatedAt         time.Time            `bson:"createdAt"`
	UpdatedAt         time.Time            `bson:"updatedAt"`
}

func (d *projectDocument) toDomain() *domain.Project {
	p := &domain.Project{
		ID:                d.ID.Hex(),
		Name:              d.Name,
		Location:          d.Location,
		Phone:             d.Phone,
		Email:             d.Email,
		StartDate:         d.StartDate,
		EndDate:           d.EndDate,
		ClientsWithAccess: hexIDs(d.ClientsWithAccess),
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
	if !d.CreatedBy.IsZero() {
		p.CreatedBy = d.CreatedBy.Hex()
	}
	return p
}

func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := projectDocument{
		ID:                primitive.NewObjectID(),
		Name:              p.Name,
		Location:          p.Location,
		Phone:             p.Phone,
		Email:             p.Email,
		StartDate:         p.StartDate,
		EndDate:           p.EndDate,
		ClientsWithAccess: []primitive.ObjectID{},
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	if oid, ok := objectID(p.CreatedBy); ok {
		doc.CreatedBy = oid
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrProjectNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc projectDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("find project: %w", err)
	}
	return doc.toDomain(), nil
}

// Update sets only the supplied fields and returns the updated document.
func (r *ProjectRepository) Update(ctx context.Context, id string, u domain.ProjectUpdate) (*domain.Project, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrProjectNotFound
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Location != nil {
		set["location"] = *u.Location
	}
	if u.Phone != nil {
		set["phone"] = *u.Phone
	}
	if u.Email != nil {
		set["email"] = *u.Email
	}
	if u.StartDate != nil {
		set["startDate"] = *u.StartDate
	}
	if u.EndDate != nil {
		set["endDate"] = *u.EndDate
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc projectDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("update project: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) (*domain.Project, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrProjectNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc projectDocument
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("delete project: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ProjectRepository) List(ctx context.Context, clientID string) ([]*domain.Project, error) {
	filter := bson.M{}
	if clientID != "" {
		oid, ok := objectID(clientID)
		if !ok {
			return []*domain.Project{}, nil
		}
		filter["clientsWithAccess"] = oid
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	var docs []projectDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	out := make([]*domain.Project, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	return out, nil
}

func (r *ProjectRepository) ListForRequestAccess(ctx context.Context) ([]*domain.ProjectAccessView, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"name": 1, "location": 1, "clientsWithAccess": 1})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list projects for request access: %w", err)
	}

	var docs []projectDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	out := make([]*domain.ProjectAccessView, len(docs))
	for i, d := range docs {
		out[i] = &domain.ProjectAccessView{
			ID:                d.ID.Hex(),
			Name:              d.Name,
			Location:          d.Location,
			ClientsWithAccess: hexIDs(d.ClientsWithAccess),
		}
	}
	return out, nil
}

// Exists reports false, not an error, for malformed ids.
func (r *ProjectRepository) Exists(ctx context.Context, id string) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count project: %w", err)
	}
	return n > 0, nil
}

func (r *ProjectRepository) AddClientAccess(ctx context.Context, projectID, clientID string) error {
	return r.updateAccess(ctx, projectID, clientID, "$addToSet")
}

func (r *ProjectRepository) RemoveClientAccess(ctx context.Context, projectID, clientID string) error {
	return r.updateAccess(ctx, projectID, clientID, "$pull")
}

func (r *ProjectRepository) updateAccess(ctx context.Context, projectID, clientID, op string) error {
	pid, ok := objectID(projectID)
	if !ok {
		return domain.ErrProjectNotFound
	}
	cid, ok := objectID(clientID)
	if !ok {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		op:     bson.M{"clientsWithAccess": cid},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": pid}, update)
	if err != nil {
		return fmt.Errorf("update project access: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

// RemoveClientFromAll pulls clientID from every access set and returns how
// many projects changed.
func (r *ProjectRepository) RemoveClientFromAll(ctx context.Context, clientID string) (int64, error) {
	cid, ok := objectID(clientID)
	if !ok {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateMany(ctx,
		bson.M{"clientsWithAccess": cid},
		bson.M{"$pull": bson.M{"clientsWithAccess": cid}},
	)
	if err != nil {
		return 0, fmt.Errorf("revoke client access: %w", err)
	}
	return res.ModifiedCount, nil
}

// EnsureIndexes creates the multikey index used by client-scoped listing.
func (r *ProjectRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "clientsWithAccess", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	return err
}
