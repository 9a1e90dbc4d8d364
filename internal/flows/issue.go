package flows

import "context"

// IssuePair mints an access token for userID, a refresh token paired to it,
// and records the refresh token as the user's only valid one.
func IssuePair(ctx context.Context, userID string, tokens TokenIssuer, store RefreshStore) (string, string, error) {
	access, err := tokens.CreateAccess(userID)
	if err != nil {
		return "", "", err
	}
	refresh, err := tokens.CreateRefresh(access)
	if err != nil {
		return "", "", err
	}
	if err := store.Set(ctx, userID, refresh); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// RunLogout drops the user's refresh record. Outstanding access tokens stay
// valid until they expire, but can no longer be rotated.
func RunLogout(ctx context.Context, userID string, store RefreshStore) error {
	return store.Delete(ctx, userID)
}
