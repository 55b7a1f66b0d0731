package mongo_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/aretw0/exprmig/pkg/adapters/mongo"
	"github.com/aretw0/exprmig/pkg/domain"
	"github.com/aretw0/exprmig/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestTranslate(t *testing.T) {
	filter := domain.And{
		domain.Or{
			domain.Regex{Field: "active.expression", Pattern: `\$\{.*@`},
			domain.Exists{Field: "expressionLanguage"},
		},
		domain.Equal{Field: "service", Value: "smartcity"},
	}

	got, err := mongo.Translate(filter)
	require.NoError(t, err)
	assert.Equal(t, bson.M{
		"$and": bson.A{
			bson.M{"$or": bson.A{
				bson.M{"active.expression": bson.M{"$regex": `\$\{.*@`}},
				bson.M{"expressionLanguage": bson.M{"$exists": true}},
			}},
			bson.M{"service": "smartcity"},
		},
	}, got)
}

func TestTranslate_Empty(t *testing.T) {
	got, err := mongo.Translate(domain.And{})
	require.NoError(t, err)
	assert.Equal(t, bson.M{}, got)

	got, err = mongo.Translate(nil)
	require.NoError(t, err)
	assert.Equal(t, bson.M{}, got)

	got, err = mongo.Translate(domain.Or{})
	require.NoError(t, err)
	assert.Contains(t, got, "_id")
}

// TestMongoStore_Contract needs a disposable MongoDB, e.g.
// EXPRMIG_MONGO_URI=mongodb://localhost:27017/ go test ./pkg/adapters/mongo/
func TestMongoStore_Contract(t *testing.T) {
	uri := os.Getenv("EXPRMIG_MONGO_URI")
	if uri == "" {
		t.Skip("EXPRMIG_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	collection := "contract_" + time.Now().Format("20060102150405")
	store, err := mongo.Connect(ctx, uri, "exprmig_test", collection, mongo.WithConnectTimeout(5*time.Second))
	require.NoError(t, err)
	defer store.Close(context.Background())

	seeded := mongo.NewFromClient(store.Client(), "exprmig_test", collection)
	defer func() {
		_ = seeded.Drop(context.Background())
	}()
	for _, doc := range ports.ContractDocuments() {
		require.NoError(t, seeded.Insert(ctx, doc))
	}

	ports.RunDocumentStoreContract(t, store)
}

func TestMongoStore_ReplaceKeepsFieldOrder(t *testing.T) {
	uri := os.Getenv("EXPRMIG_MONGO_URI")
	if uri == "" {
		t.Skip("EXPRMIG_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	collection := "order_" + time.Now().Format("20060102150405")
	store, err := mongo.Connect(ctx, uri, "exprmig_test", collection, mongo.WithConnectTimeout(5*time.Second))
	require.NoError(t, err)
	defer store.Close(context.Background())
	defer func() {
		_ = store.Drop(context.Background())
	}()

	_, err = store.Client().Database("exprmig_test").Collection(collection).InsertOne(ctx, bson.D{
		{Key: "_id", Value: "dev-1"},
		{Key: "zeta", Value: 1},
		{Key: "endpoint", Value: "${@host}"},
		{Key: "alpha", Value: bson.D{{Key: "y", Value: 1}, {Key: "b", Value: 2}}},
	})
	require.NoError(t, err)

	readOrder := func() []string {
		var d bson.D
		err := store.Client().Database("exprmig_test").Collection(collection).
			FindOne(ctx, bson.M{"_id": "dev-1"}).Decode(&d)
		require.NoError(t, err)
		keys := make([]string, 0, len(d))
		for _, e := range d {
			keys = append(keys, e.Key)
		}
		return keys
	}

	for doc, err := range store.Find(ctx, domain.Regex{Field: "endpoint", Pattern: `\$\{.*@`}) {
		require.NoError(t, err)
		doc["endpoint"] = "host"
		require.NoError(t, store.Replace(ctx, doc.ID(), doc))
	}
	assert.Equal(t, []string{"_id", "zeta", "endpoint", "alpha"}, readOrder())

	// Without a preceding Find the stored version provides the layout.
	require.NoError(t, store.Replace(ctx, "dev-1", domain.Document{
		"_id": "dev-1", "alpha": map[string]any{"b": 2, "y": 1}, "endpoint": "${@host}", "zeta": 1,
	}))
	assert.Equal(t, []string{"_id", "zeta", "endpoint", "alpha"}, readOrder())
}
