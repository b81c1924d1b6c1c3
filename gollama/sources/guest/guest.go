package guest

import (
	"context"
	"time"

	"gollama/gollama/sources/psql/dao"
	"gollama/gollama/utils/logging"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	sessionTTL      = 24 * time.Hour
	janitorInterval = 10 * time.Minute
	sweepTimeout    = 10 * time.Second
)

// Registry tracks anonymous browser session keys. When a key expires the
// eviction hook sweeps that guest's chats from the store, replacing the
// request-time cleanup the server used to do on every response.
type Registry struct {
	keys    *cache.Cache
	chatDAO *dao.ChatDAO
}

func NewRegistry(chatDAO *dao.ChatDAO) *Registry {
	r := &Registry{
		keys:    cache.New(sessionTTL, janitorInterval),
		chatDAO: chatDAO,
	}
	r.keys.OnEvicted(func(key string, _ interface{}) {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		if err := chatDAO.SweepGuestSessions(ctx, key); err != nil {
			logging.ErrorLogger.Error("guest chat sweep failed",
				zap.String("session_key", key), zap.Error(err))
			return
		}
		logging.AppLogger.Info("swept expired guest session", zap.String("session_key", key))
	})
	return r
}

// Touch records activity on a guest session key, resetting its expiry.
func (r *Registry) Touch(key string) {
	r.keys.Set(key, struct{}{}, cache.DefaultExpiration)
}

func (r *Registry) Active(key string) bool {
	_, found := r.keys.Get(key)
	return found
}
