package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/levenlabs/go-lflag"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/gridadvisor/gridadvisor/pkg/log"
	"github.com/gridadvisor/gridadvisor/pkg/types"
)

// FirestoreProvider implements the Database interface using Google Cloud
// Firestore. Records are stored as JSON strings inside documents so the Go
// structs stay the single source of truth for the schema.
type FirestoreProvider struct {
	client    *firestore.Client
	projectID string
	database  string
}

// configuredFirestore sets up the Firestore provider.
// It registers flags for configuration.
func configuredFirestore() *FirestoreProvider {
	projectID := lflag.String("firestore-project-id", "", "Google Cloud Project ID for Firestore")
	database := lflag.String("firestore-database", "", "Google Cloud Firestore Database")
	emulator := lflag.String("firestore-emulator", "", "Use Firestore emulator")

	f := &FirestoreProvider{}

	lflag.Do(func() {
		f.projectID = *projectID
		f.database = *database

		// set this because that's how firestore client expects it
		if *emulator != "" {
			os.Setenv("FIRESTORE_EMULATOR_HOST", *emulator)
		}
	})

	return f
}

// Validate checks if the provider is properly configured.
func (f *FirestoreProvider) Validate() error {
	// Project ID may be empty if inferred from the environment.
	return nil
}

// Init initializes the Firestore client.
// This must be called before using the provider methods.
func (f *FirestoreProvider) Init(ctx context.Context) error {
	projectID := f.projectID
	if projectID == "" {
		projectID = firestore.DetectProjectID
	}
	database := f.database
	if database == "" {
		database = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, database)
	if err != nil {
		return fmt.Errorf("failed to create firestore client (project=%s, database=%s): %w", projectID, database, err)
	}
	f.client = client
	return nil
}

// Close closes the Firestore client connection.
func (f *FirestoreProvider) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func (f *FirestoreProvider) getCollection(siteID, name string) (*firestore.CollectionRef, error) {
	if siteID == "" {
		return nil, fmt.Errorf("siteID cannot be empty")
	}
	return f.client.Collection("sites").Doc(siteID).Collection(name), nil
}

// decodeJSONDoc reads the "json" field of a document into out.
func decodeJSONDoc(ctx context.Context, doc *firestore.DocumentSnapshot, out any) error {
	val, err := doc.DataAt("json")
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "doc missing json", slog.String("docID", doc.Ref.ID))
		return fmt.Errorf("document %s missing 'json' field: %w", doc.Ref.ID, err)
	}
	jsonStr, ok := val.(string)
	if !ok {
		log.Ctx(ctx).WarnContext(ctx, "doc json not string", slog.String("docID", doc.Ref.ID))
		return fmt.Errorf("document %s 'json' field is not a string", doc.Ref.ID)
	}
	if err := json.Unmarshal([]byte(jsonStr), out); err != nil {
		return fmt.Errorf("failed to unmarshal document %s: %w", doc.Ref.ID, err)
	}
	return nil
}

// GetSite retrieves a site record from the "sites" collection.
func (f *FirestoreProvider) GetSite(ctx context.Context, siteID string) (types.Site, error) {
	if siteID == "" {
		return types.Site{}, fmt.Errorf("siteID cannot be empty")
	}
	doc, err := f.client.Collection("sites").Doc(siteID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return types.Site{}, ErrSiteNotFound
		}
		return types.Site{}, fmt.Errorf("failed to fetch site doc: %w", err)
	}
	var site types.Site
	if err := decodeJSONDoc(ctx, doc, &site); err != nil {
		return types.Site{}, err
	}
	return site, nil
}

// ListSites returns every site record.
func (f *FirestoreProvider) ListSites(ctx context.Context) ([]types.Site, error) {
	iter := f.client.Collection("sites").Documents(ctx)
	defer iter.Stop()

	var sites []types.Site
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating sites: %w", err)
		}
		var site types.Site
		if err := decodeJSONDoc(ctx, doc, &site); err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}
	return sites, nil
}

// CreateSite stores a new site record.
func (f *FirestoreProvider) CreateSite(ctx context.Context, siteID string, site types.Site) error {
	if siteID == "" {
		return fmt.Errorf("siteID cannot be empty")
	}
	jsonBytes, err := json.Marshal(site)
	if err != nil {
		return fmt.Errorf("failed to marshal site: %w", err)
	}
	_, err = f.client.Collection("sites").Doc(siteID).Set(ctx, map[string]interface{}{
		"json": string(jsonBytes),
	})
	if err != nil {
		return fmt.Errorf("failed to create site: %w", err)
	}
	return nil
}

// GetTariff retrieves the tariff from the "config/tariff" document.
func (f *FirestoreProvider) GetTariff(ctx context.Context, siteID string) (types.Tariff, error) {
	coll, err := f.getCollection(siteID, "config")
	if err != nil {
		return types.Tariff{}, err
	}
	doc, err := coll.Doc("tariff").Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return types.Tariff{}, ErrTariffNotFound
		}
		return types.Tariff{}, fmt.Errorf("failed to fetch tariff doc: %w", err)
	}
	var t types.Tariff
	if err := decodeJSONDoc(ctx, doc, &t); err != nil {
		return types.Tariff{}, err
	}
	return t, nil
}

// SetTariff saves the tariff to the "config/tariff" document.
// It stores the tariff as a JSON string for portability.
func (f *FirestoreProvider) SetTariff(ctx context.Context, siteID string, tariff types.Tariff) error {
	jsonBytes, err := json.Marshal(tariff)
	if err != nil {
		return fmt.Errorf("failed to marshal tariff: %w", err)
	}
	coll, err := f.getCollection(siteID, "config")
	if err != nil {
		return err
	}
	_, err = coll.Doc("tariff").Set(ctx, map[string]interface{}{
		"json": string(jsonBytes),
	})
	if err != nil {
		return fmt.Errorf("failed to save tariff: %w", err)
	}
	return nil
}

// ListDevices returns the device registry for a site.
func (f *FirestoreProvider) ListDevices(ctx context.Context, siteID string) ([]types.Device, error) {
	coll, err := f.getCollection(siteID, "devices")
	if err != nil {
		return nil, err
	}
	iter := coll.Documents(ctx)
	defer iter.Stop()

	var devices []types.Device
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating devices: %w", err)
		}
		var d types.Device
		if err := decodeJSONDoc(ctx, doc, &d); err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, nil
}

// UpsertDevice adds or updates a device record, keyed by device ID.
func (f *FirestoreProvider) UpsertDevice(ctx context.Context, siteID string, device types.Device) error {
	if device.ID == "" {
		return fmt.Errorf("device missing id")
	}
	jsonBytes, err := json.Marshal(device)
	if err != nil {
		return fmt.Errorf("failed to marshal device: %w", err)
	}
	coll, err := f.getCollection(siteID, "devices")
	if err != nil {
		return err
	}
	_, err = coll.Doc(device.ID).Set(ctx, map[string]interface{}{
		"json": string(jsonBytes),
	})
	if err != nil {
		return fmt.Errorf("failed to upsert device: %w", err)
	}
	return nil
}

// InsertRecommendations records an advisor result in the
// "recommendation_history" collection as a JSON blob. The document ID is the
// RFC3339 generation timestamp for efficient range queries.
func (f *FirestoreProvider) InsertRecommendations(ctx context.Context, siteID string, set types.RecommendationSet) error {
	if set.GeneratedAt.IsZero() {
		return fmt.Errorf("recommendation set missing generatedAt")
	}
	jsonBytes, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendation set: %w", err)
	}
	coll, err := f.getCollection(siteID, "recommendation_history")
	if err != nil {
		return err
	}
	docID := set.GeneratedAt.UTC().Format(time.RFC3339)
	_, err = coll.Doc(docID).Set(ctx, map[string]interface{}{
		"json":      string(jsonBytes),
		"timestamp": set.GeneratedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to insert recommendation set: %w", err)
	}
	return nil
}

// GetRecommendationHistory retrieves recommendation sets within the
// specified time range. Uses document ID range queries for efficient
// filtering without reading all documents.
func (f *FirestoreProvider) GetRecommendationHistory(ctx context.Context, siteID string, start, end time.Time) ([]types.RecommendationSet, error) {
	startDocID := start.UTC().Format(time.RFC3339)
	endDocID := end.UTC().Format(time.RFC3339)

	coll, err := f.getCollection(siteID, "recommendation_history")
	if err != nil {
		return nil, err
	}
	iter := coll.
		Where(firestore.DocumentID, ">=", coll.Doc(startDocID)).
		Where(firestore.DocumentID, "<", coll.Doc(endDocID)).
		OrderBy(firestore.DocumentID, firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var sets []types.RecommendationSet
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating recommendation history: %w", err)
		}
		var set types.RecommendationSet
		if err := decodeJSONDoc(ctx, doc, &set); err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, nil
}
