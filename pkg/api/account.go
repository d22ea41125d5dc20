package api

import (
	"net/http"

	"github.com/Sternrassler/storefront-client/pkg/cache"
	"github.com/Sternrassler/storefront-client/pkg/models"
)

// Addresses is the saved address group.
var Addresses = struct {
	GetAddresses  QueryDef[None, []models.Address]
	CreateAddress MutationDef[models.Address, models.Address]
	UpdateAddress MutationDef[models.Address, models.Address]
	DeleteAddress MutationDef[int64, None]
}{
	GetAddresses: QueryDef[None, []models.Address]{
		Name:     "getAddresses",
		Path:     "/account/addresses/",
		Provides: tags[None](cache.TypeTag(TagAddress)),
	},
	CreateAddress: MutationDef[models.Address, models.Address]{
		Name:        "createAddress",
		Method:      http.MethodPost,
		Path:        "/account/addresses/",
		Bind:        withBody[models.Address],
		Invalidates: tags[models.Address](cache.TypeTag(TagAddress)),
	},
	UpdateAddress: MutationDef[models.Address, models.Address]{
		Name:   "updateAddress",
		Method: http.MethodPatch,
		Path:   "/account/addresses/{id}/",
		Bind: func(a models.Address) Call {
			call := byID(a.ID)
			call.Body = a
			return call
		},
		Invalidates: tags[models.Address](cache.TypeTag(TagAddress)),
	},
	DeleteAddress: MutationDef[int64, None]{
		Name:        "deleteAddress",
		Method:      http.MethodDelete,
		Path:        "/account/addresses/{id}/",
		Bind:        byID,
		Invalidates: tags[int64](cache.TypeTag(TagAddress)),
	},
}

// Admin is the admin user management group.
var Admin = struct {
	GetUsers   QueryDef[None, []models.User]
	UpdateUser MutationDef[models.UserUpdate, models.User]
	DeleteUser MutationDef[int64, None]
}{
	GetUsers: QueryDef[None, []models.User]{
		Name:     "getUsers",
		Path:     "/admin/users/",
		Provides: tags[None](cache.TypeTag(TagUser)),
	},
	UpdateUser: MutationDef[models.UserUpdate, models.User]{
		Name:   "adminUpdateUser",
		Method: http.MethodPatch,
		Path:   "/admin/users/{id}/",
		Bind: func(u models.UserUpdate) Call {
			call := byID(u.ID)
			call.Body = u
			return call
		},
		Invalidates: func(u models.UserUpdate) []cache.Tag {
			return []cache.Tag{cache.TypeTag(TagUser), cache.IDTag(TagUser, u.ID)}
		},
	},
	DeleteUser: MutationDef[int64, None]{
		Name:        "adminDeleteUser",
		Method:      http.MethodDelete,
		Path:        "/admin/users/{id}/",
		Bind:        byID,
		Invalidates: tags[int64](cache.TypeTag(TagUser)),
	},
}
