package cart

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

// CartStore defines the operations on the cart collection.
type CartStore interface {
	// Create stores a new empty cart.
	Create(ctx context.Context) (*Cart, error)

	// List returns every stored cart. Never nil.
	List(ctx context.Context) ([]Cart, error)

	// GetByID returns the cart with the given id or ErrCartNotFound.
	GetByID(ctx context.Context, id string) (*Cart, error)

	// Update merges patch into the cart with the given id. The id itself never changes.
	// Returns ErrCartNotFound, or a *ValidationError when the new products repeat a productId.
	Update(ctx context.Context, id string, patch CartPatch) (*Cart, error)

	// AddItem adds quantity of productID to the cart, merging with an existing item.
	// The product id is not checked against the product collection.
	// Returns ErrCartNotFound if the cart does not exist.
	AddItem(ctx context.Context, cartID, productID string, quantity float64) (*Cart, error)
}

// Store implements CartStore on top of a whole-collection repository.
type Store struct {
	mu        sync.Mutex
	repo      storage.Repository[Cart]
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

// NewStore creates a cart store backed by repo.
func NewStore(repo storage.Repository[Cart], opts ...Option) *Store {
	meter := otel.Meter("cart-store")
	mutations, err := meter.Int64Counter("carts_mutations", metric.WithDescription("Total number of successful cart mutations"))
	if err != nil {
		panic(fmt.Sprintf("failed to create carts_mutations counter: %v", err))
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
	s.logger = s.logger.With("component", "cart_store")
	return s
}

func (s *Store) Create(ctx context.Context) (*Cart, error) {
	created := Cart{ID: uuid.NewString(), Products: make([]Item, 0)}
	err := s.mutate(ctx, func(carts []Cart) ([]Cart, error) {
		return append(carts, created), nil
	})
	if err != nil {
		return nil, err
	}

	s.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "create")))
	s.publish(ctx, ChangedEvent{
		subject:    CreatedSubject,
		Carrier:    messaging.TraceCarrier(ctx),
		Cart:       created,
		OccurredAt: time.Now().UTC(),
	})
	return &created, nil
}

func (s *Store) List(ctx context.Context) ([]Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	carts, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return carts, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	carts, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(carts, id)
	if i < 0 {
		return nil, fmt.Errorf("cart %s: %w", id, perrors.ErrCartNotFound)
	}
	return &carts[i], nil
}

func (s *Store) Update(ctx context.Context, id string, patch CartPatch) (*Cart, error) {
	if err := s.validate.StructCtx(ctx, patch); err != nil {
		fields, ok := validation.Fields(err)
		if !ok {
			return nil, fmt.Errorf("failed to validate cart: %w", err)
		}
		s.logger.WarnContext(ctx, "Cart update rejected", "cart_id", id, "fields", fields)
		return nil, &perrors.ValidationError{Fields: fields}
	}

	var updated Cart
	err := s.mutate(ctx, func(carts []Cart) ([]Cart, error) {
		i := indexOf(carts, id)
		if i < 0 {
			s.logger.WarnContext(ctx, "Cart not found for update", "cart_id", id)
			return nil, fmt.Errorf("cart %s: %w", id, perrors.ErrCartNotFound)
		}
		updated = patch.apply(carts[i])
		updated.ID = id
		carts[i] = updated
		return carts, nil
	})
	if err != nil {
		return nil, err
	}

	s.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "update")))
	s.publish(ctx, ChangedEvent{
		subject:    UpdatedSubject,
		Carrier:    messaging.TraceCarrier(ctx),
		Cart:       updated,
		OccurredAt: time.Now().UTC(),
	})
	return &updated, nil
}

func (s *Store) AddItem(ctx context.Context, cartID, productID string, quantity float64) (*Cart, error) {
	var updated Cart
	err := s.mutate(ctx, func(carts []Cart) ([]Cart, error) {
		i := indexOf(carts, cartID)
		if i < 0 {
			s.logger.WarnContext(ctx, "Cart not found for item add", "cart_id", cartID, "product_id", productID)
			return nil, fmt.Errorf("cart %s: %w", cartID, perrors.ErrCartNotFound)
		}
		carts[i].addItem(productID, quantity)
		updated = carts[i]
		return carts, nil
	})
	if err != nil {
		return nil, err
	}

	s.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "add_item")))
	s.publish(ctx, ItemAddedEvent{
		Carrier:    messaging.TraceCarrier(ctx),
		ProductID:  productID,
		Quantity:   quantity,
		Cart:       updated,
		OccurredAt: time.Now().UTC(),
	})
	return &updated, nil
}

// load reads the collection and normalises carts stored without a products array.
func (s *Store) load(ctx context.Context) ([]Cart, error) {
	carts, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load carts: %w", err)
	}
	for i := range carts {
		if carts[i].Products == nil {
			carts[i].Products = make([]Item, 0)
		}
	}
	return carts, nil
}

// mutate runs one locked load-modify-save cycle. Nothing is written when fn fails.
func (s *Store) mutate(ctx context.Context, fn func([]Cart) ([]Cart, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	carts, err := s.load(ctx)
	if err != nil {
		return err
	}
	carts, err = fn(carts)
	if err != nil {
		return err
	}
	if err := s.repo.Save(ctx, carts); err != nil {
		return fmt.Errorf("failed to save carts: %w", err)
	}
	return nil
}

func (s *Store) publish(ctx context.Context, event messaging.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event", "subject", event.Subject(), "error", err)
	}
}

func indexOf(carts []Cart, id string) int {
	for i, c := range carts {
		if c.ID == id {
			return i
		}
	}
	return -1
}
