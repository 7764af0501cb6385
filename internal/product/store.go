package product

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	perrors "github.com/abgdnv/flatshop/internal/errors"
	"github.com/abgdnv/flatshop/internal/storage"
	"github.com/abgdnv/flatshop/pkg/messaging"
	"github.com/abgdnv/flatshop/pkg/validation"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ProductStore defines the operations on the product collection.
type ProductStore interface {
	// Add validates and stores a new product.
	// Returns a *ValidationError for missing fields or ErrDuplicateCode if the code is taken.
	Add(ctx context.Context, in ProductInput) (*Product, error)

	// List returns every stored product. Never nil.
	List(ctx context.Context) ([]Product, error)

	// GetByID returns the product with the given id or ErrProductNotFound.
	GetByID(ctx context.Context, id string) (*Product, error)

	// Update merges patch into the product with the given id. The id itself never changes.
	// Returns ErrProductNotFound or ErrDuplicateCode.
	Update(ctx context.Context, id string, patch ProductPatch) (*Product, error)

	// Delete removes the product with the given id or returns ErrProductNotFound.
	Delete(ctx context.Context, id string) error
}

// Store implements ProductStore on top of a whole-collection repository.
// The mutex serialises every load-modify-save cycle.
type Store struct {
	mu        sync.Mutex
	repo      storage.Repository[Product]
	validate  *validator.Validate
	publisher messaging.Publisher
	logger    *slog.Logger
	mutations metric.Int64Counter
}

type Option func(*Store)

// WithPublisher sets the publisher that receives change events.
func WithPublisher(p messaging.Publisher) Option {
	return func(s *Store) {
		s.publisher = p
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// NewStore creates a product store backed by repo.
func NewStore(repo storage.Repository[Product], opts ...Option) *Store {
	meter := otel.Meter("product-store")
	mutations, err := meter.Int64Counter("products_mutations", metric.WithDescription("Total number of successful product mutations"))
	if err != nil {
		panic(fmt.Sprintf("failed to create products_mutations counter: %v", err))
	}
	s := &Store{
		repo:      repo,
		validate:  validation.New(),
		publisher: messaging.NopPublisher{},
		logger:    slog.Default(),
		mutations: mutations,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "product_store")
	return s
}

func (s *Store) Add(ctx context.Context, in ProductInput) (*Product, error) {
	if err := s.validate.StructCtx(ctx, in); err != nil {
		fields, ok := validation.Fields(err)
		if !ok {
			return nil, fmt.Errorf("failed to validate product: %w", err)
		}
		s.logger.WarnContext(ctx, "Product rejected: missing required fields", "fields", fields)
		return nil, &perrors.ValidationError{Fields: fields}
	}

	var created Product
	err := s.mutate(ctx, func(products []Product) ([]Product, error) {
		for _, p := range products {
			if p.Code == in.Code {
				s.logger.WarnContext(ctx, "Product rejected: code already exists", "code", in.Code)
				return nil, fmt.Errorf("code %s: %w", in.Code, perrors.ErrDuplicateCode)
			}
		}
		created = newProduct(uuid.NewString(), in)
		return append(products, created), nil
	})
	if err != nil {
		return nil, err
	}

	s.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "add")))
	s.publish(ctx, ChangedEvent{
		subject:    CreatedSubject,
		Carrier:    messaging.TraceCarrier(ctx),
		Product:    created,
		OccurredAt: time.Now().UTC(),
	})
	return &created, nil
}

func (s *Store) List(ctx context.Context) ([]Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	return products, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	i := indexOf(products, id)
	if i < 0 {
		return nil, fmt.Errorf("product %s: %w", id, perrors.ErrProductNotFound)
	}
	return &products[i], nil
}

func (s *Store) Update(ctx context.Context, id string, patch ProductPatch) (*Product, error) {
	var updated Product
	err := s.mutate(ctx, func(products []Product) ([]Product, error) {
		i := indexOf(products, id)
		if i < 0 {
			s.logger.WarnContext(ctx, "Product not found for update", "product_id", id)
			return nil, fmt.Errorf("product %s: %w", id, perrors.ErrProductNotFound)
		}
		if patch.Code != nil && *patch.Code != products[i].Code {
			for _, p := range products {
				if p.Code == *patch.Code {
					s.logger.WarnContext(ctx, "Product update rejected: code already exists", "product_id", id, "code", *patch.Code)
					return nil, fmt.Errorf("code %s: %w", *patch.Code, perrors.ErrDuplicateCode)
				}
			}
		}
		updated = patch.apply(products[i])
		updated.ID = id
		products[i] = updated
		return products, nil
	})
	if err != nil {
		return nil, err
	}

	s.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "update")))
	s.publish(ctx, ChangedEvent{
		subject:    UpdatedSubject,
		Carrier:    messaging.TraceCarrier(ctx),
		Product:    updated,
		OccurredAt: time.Now().UTC(),
	})
	return &updated, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	err := s.mutate(ctx, func(products []Product) ([]Product, error) {
		kept := make([]Product, 0, len(products))
		for _, p := range products {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		if len(kept) == len(products) {
			s.logger.WarnContext(ctx, "Product not found for delete", "product_id", id)
			return nil, fmt.Errorf("product %s: %w", id, perrors.ErrProductNotFound)
		}
		return kept, nil
	})
	if err != nil {
		return err
	}

	s.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "delete")))
	s.publish(ctx, DeletedEvent{
		Carrier:    messaging.TraceCarrier(ctx),
		ProductID:  id,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// mutate runs one locked load-modify-save cycle. Nothing is written when fn fails.
func (s *Store) mutate(ctx context.Context, fn func([]Product) ([]Product, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}
	products, err = fn(products)
	if err != nil {
		return err
	}
	if err := s.repo.Save(ctx, products); err != nil {
		return fmt.Errorf("failed to save products: %w", err)
	}
	return nil
}

// publish delivers the event on a best-effort basis.
func (s *Store) publish(ctx context.Context, event messaging.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event", "subject", event.Subject(), "error", err)
	}
}

func indexOf(products []Product, id string) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}
