package redis

const (
	// KeyPrefixFavorite is the prefix for favorite marker hashes
	KeyPrefixFavorite = "scholardesk:favorite:"
	// KeyPrefixUserFavorites is the prefix for the per-user set of marked scholarship IDs
	KeyPrefixUserFavorites = "scholardesk:favorites:user:"
	// KeyPrefixProfile is the prefix for profile documents
	KeyPrefixProfile = "scholardesk:profile:"
	// KeyPrefixSuggestion is the prefix for suggestion documents
	KeyPrefixSuggestion = "scholardesk:suggestion:"
	// KeySuggestions is the list of suggestion IDs, newest first
	KeySuggestions = "scholardesk:suggestions"
	// KeyCatalogSnapshot holds the last successfully loaded catalog
	KeyCatalogSnapshot = "scholardesk:catalog:snapshot"
)

// Favorite marker hash fields
const (
	fieldUserID        = "userId"
	fieldScholarshipID = "scholarshipId"
	fieldAddedAt       = "addedAt"
	fieldDeleted       = "deleted"
)

// FavoriteKey returns the marker key. The identity is deterministic so that
// favoriting twice addresses the same marker.
func FavoriteKey(userID, scholarshipID string) string {
	return KeyPrefixFavorite + userID + ":" + scholarshipID
}

// UserFavoritesKey returns the key of the set indexing a user's markers
func UserFavoritesKey(userID string) string {
	return KeyPrefixUserFavorites + userID
}

// ProfileKey returns the Redis key for a user profile
func ProfileKey(userID string) string {
	return KeyPrefixProfile + userID
}

// SuggestionKey returns the Redis key for a suggestion
func SuggestionKey(id string) string {
	return KeyPrefixSuggestion + id
}

// CatalogSnapshotKey returns the key of the catalog snapshot
func CatalogSnapshotKey() string {
	return KeyCatalogSnapshot
}
