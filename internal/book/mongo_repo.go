package book

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo stores books in a MongoDB collection keyed by ObjectID.
type MongoRepo struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewMongoRepo(coll *mongo.Collection, timeout time.Duration) *MongoRepo {
	return &MongoRepo{coll: coll, timeout: timeout}
}

func (r *MongoRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// bookDocument is the native MongoDB shape of a Book.
type bookDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Author      string             `bson:"author"`
	Description string             `bson:"description"`
	Price       float64            `bson:"price"`
	Image       string             `bson:"image"`
	Stock       *int               `bson:"stock,omitempty"`
}

func (d bookDocument) toBook() Book {
	return Book{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Author:      d.Author,
		Description: d.Description,
		Price:       d.Price,
		Image:       d.Image,
		Stock:       d.Stock,
	}
}

func newBookDocument(id primitive.ObjectID, b Book) bookDocument {
	return bookDocument{
		ID:          id,
		Name:        b.Name,
		Author:      b.Author,
		Description: b.Description,
		Price:       b.Price,
		Image:       b.Image,
		Stock:       b.Stock,
	}
}

// mongoFilter renders p as a query document. Substrings are matched with
// a quoted, case-sensitive regular expression.
func mongoFilter(p Predicate) (bson.M, error) {
	if p.MatchAll() {
		return bson.M{}, nil
	}
	or := make(bson.A, 0, len(p.Any))
	for _, conj := range p.Any {
		doc := bson.M{}
		for _, c := range conj {
			switch c.Op {
			case OpGTE, OpLTE:
				if c.Field != FieldPrice {
					return nil, fmt.Errorf("unsupported range field %q", c.Field)
				}
				rng, _ := doc[string(c.Field)].(bson.M)
				if rng == nil {
					rng = bson.M{}
				}
				rng["$"+string(c.Op)] = c.Value
				doc[string(c.Field)] = rng
			case OpContains:
				s, _ := c.Value.(string)
				doc[string(c.Field)] = bson.M{"$regex": regexp.QuoteMeta(s)}
			default:
				return nil, fmt.Errorf("unsupported filter operator %q", c.Op)
			}
		}
		or = append(or, doc)
	}
	return bson.M{"$or": or}, nil
}

func (r *MongoRepo) Find(ctx context.Context, p Predicate) ([]Book, error) {
	filter, err := mongoFilter(p)
	if err != nil {
		return nil, err
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	cur, err := r.coll.Find(timeoutCtx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []bookDocument
	if err := cur.All(timeoutCtx, &docs); err != nil {
		return nil, err
	}
	out := make([]Book, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toBook())
	}
	return out, nil
}

func (r *MongoRepo) FindByID(ctx context.Context, id string) (Book, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Book{}, ErrNotFound
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var doc bookDocument
	if err := r.coll.FindOne(timeoutCtx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return doc.toBook(), nil
}

func (r *MongoRepo) Insert(ctx context.Context, b Book) (string, error) {
	doc := newBookDocument(primitive.NewObjectID(), b)
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if _, err := r.coll.InsertOne(timeoutCtx, doc); err != nil {
		return "", fmt.Errorf("insert book: %w", err)
	}
	return doc.ID.Hex(), nil
}

func (r *MongoRepo) Upsert(ctx context.Context, id string, b Book) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("upsert book: %w", err)
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err = r.coll.ReplaceOne(timeoutCtx, bson.M{"_id": oid}, newBookDocument(oid, b), options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert book: %w", err)
	}
	return nil
}

func (r *MongoRepo) Delete(ctx context.Context, id string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	res, err := r.coll.DeleteOne(timeoutCtx, bson.M{"_id": oid})
	if err != nil {
		return 0, fmt.Errorf("delete book: %w", err)
	}
	return res.DeletedCount, nil
}
