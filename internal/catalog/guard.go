package catalog

import "github.com/moviemaster/catalog/internal/model"

// CanMutate reports whether the identity may update or delete the movie.
// Ownership is plain equality with the record's AddedBy field: no roles, no
// delegation, no admin override. The empty identity never owns anything.
func CanMutate(identity string, m model.Movie) bool {
	return identity != "" && identity == m.AddedBy
}
