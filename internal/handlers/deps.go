package handlers

import (
	"context"

	"shopsim/internal/repos"
	"shopsim/internal/store"
)

// FileURLResolver maps an opaque file id to a servable URL. The storefront's
// file-storage collaborator provides the real one.
type FileURLResolver interface {
	Resolve(ctx context.Context, fileID string) (string, bool)
}

// Options carry the behavior knobs handlers read at dispatch time.
type Options struct {
	// StrictTransitions rejects order status moves that are not adjacent in
	// the fulfilment chain. Off by default: manual overrides stay allowed.
	StrictTransitions bool
}

type Deps struct {
	Auth     *AuthHandler
	User     *UserHandler
	Category *CategoryHandler
	Product  *ProductHandler
	Order    *OrderHandler
	Cart     *CartHandler
	Address  *AddressHandler
	Payment  *PaymentMethodHandler
	File     *FileHandler

	Users *repos.UserRepo // router's seed gate reads this
}

func NewDeps(s *store.Store, opts Options) *Deps {
	userRepo := repos.NewUserRepo(s)
	catRepo := repos.NewCategoryRepo(s)
	prodRepo := repos.NewProductRepo(s)
	orderRepo := repos.NewOrderRepo(s)
	cartRepo := repos.NewCartRepo(s)
	addrRepo := repos.NewAddressRepo(s)
	payRepo := repos.NewPaymentMethodRepo(s)
	fileRepo := repos.NewFileRepo(s)

	files := &FileHandler{Files: fileRepo}

	return &Deps{
		Auth:     &AuthHandler{Users: userRepo},
		User:     &UserHandler{Users: userRepo},
		Category: &CategoryHandler{Categories: catRepo, Products: prodRepo},
		Product:  &ProductHandler{Products: prodRepo, Categories: catRepo, Orders: orderRepo, Files: fileRepo, Resolver: files},
		Order:    &OrderHandler{Orders: orderRepo, Products: prodRepo, Addresses: addrRepo, Payments: payRepo, Strict: opts.StrictTransitions},
		Cart:     &CartHandler{Carts: cartRepo, Products: prodRepo},
		Address:  &AddressHandler{Addresses: addrRepo},
		Payment:  &PaymentMethodHandler{Payments: payRepo},
		File:     files,
		Users:    userRepo,
	}
}
