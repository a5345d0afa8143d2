package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"reno_server/server/uploads/domain"
)

// GrantTracker records issued upload grants in redis so a commit can
// consume the grant it was issued against. Entries expire with the
// presigned URL, so an abandoned grant cleans itself up.
type GrantTracker struct {
	client *redis.Client
}

func NewGrantTracker(client *redis.Client) *GrantTracker {
	return &GrantTracker{client: client}
}

func grantKey(ownerID, objectKey string) string {
	return "upload_grant:" + ownerID + ":" + objectKey
}

func (t *GrantTracker) Record(ctx context.Context, grant domain.Grant) error {
	ttl := time.Until(grant.ExpiresAt)
	if ttl <= 0 {
		return errors.New("grant already expired")
	}
	encoded, err := json.Marshal(grant)
	if err != nil {
		return err
	}
	return t.client.Set(ctx, grantKey(grant.OwnerID, grant.ObjectKey), encoded, ttl).Err()
}

// Consume removes and returns the outstanding grant for the object key.
// A grant can be consumed at most once; a second call reports not-found.
func (t *GrantTracker) Consume(ctx context.Context, ownerID, objectKey string) (domain.Grant, bool, error) {
	raw, err := t.client.GetDel(ctx, grantKey(ownerID, objectKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Grant{}, false, nil
	}
	if err != nil {
		return domain.Grant{}, false, err
	}
	var grant domain.Grant
	if err := json.Unmarshal(raw, &grant); err != nil {
		return domain.Grant{}, false, err
	}
	return grant, true, nil
}
