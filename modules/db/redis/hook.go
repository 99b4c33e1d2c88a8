package redis

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/rueidishook"
)

var _ rueidishook.Hook = (*LoggingHook)(nil)

// LoggingHook logs command names and latency at debug level. Arguments are
// never logged since cached payloads may be large.
type LoggingHook struct {
	log *slog.Logger
}

func NewLoggingHook(log *slog.Logger) *LoggingHook {
	if log == nil {
		log = slog.Default()
	}
	return &LoggingHook{log: log}
}

func (h *LoggingHook) Do(client rueidis.Client, ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	start := time.Now()
	resp := client.Do(ctx, cmd)
	h.record(ctx, commandName(cmd.Commands()), false, start, resp.Error())
	return resp
}

func (h *LoggingHook) DoMulti(client rueidis.Client, ctx context.Context, multi ...rueidis.Completed) []rueidis.RedisResult {
	start := time.Now()
	resps := client.DoMulti(ctx, multi...)
	h.record(ctx, "MULTI("+multiName(multi)+")", false, start, firstError(resps))
	return resps
}

func (h *LoggingHook) DoCache(client rueidis.Client, ctx context.Context, cmd rueidis.Cacheable, ttl time.Duration) rueidis.RedisResult {
	start := time.Now()
	resp := client.DoCache(ctx, cmd, ttl)
	h.record(ctx, commandName(cmd.Commands()), resp.IsCacheHit(), start, resp.Error())
	return resp
}

func (h *LoggingHook) DoMultiCache(client rueidis.Client, ctx context.Context, multi ...rueidis.CacheableTTL) []rueidis.RedisResult {
	start := time.Now()
	resps := client.DoMultiCache(ctx, multi...)
	h.record(ctx, "MULTI_CACHE", false, start, firstError(resps))
	return resps
}

func (h *LoggingHook) Receive(client rueidis.Client, ctx context.Context, subscribe rueidis.Completed, fn func(msg rueidis.PubSubMessage)) error {
	return client.Receive(ctx, subscribe, fn)
}

func (h *LoggingHook) DoStream(client rueidis.Client, ctx context.Context, cmd rueidis.Completed) rueidis.RedisResultStream {
	return client.DoStream(ctx, cmd)
}

func (h *LoggingHook) DoMultiStream(client rueidis.Client, ctx context.Context, multi ...rueidis.Completed) rueidis.MultiRedisResultStream {
	return client.DoMultiStream(ctx, multi...)
}

func (h *LoggingHook) record(ctx context.Context, name string, cacheHit bool, start time.Time, err error) {
	attrs := []slog.Attr{
		slog.String("cmd", name),
		slog.Duration("took", time.Since(start)),
	}
	if cacheHit {
		attrs = append(attrs, slog.Bool("client_cache_hit", true))
	}
	if err != nil && !rueidis.IsRedisNil(err) {
		attrs = append(attrs, slog.Any("error", err))
		h.log.LogAttrs(ctx, slog.LevelWarn, "redis command failed", attrs...)
		return
	}
	h.log.LogAttrs(ctx, slog.LevelDebug, "redis command", attrs...)
}

func commandName(cmds []string) string {
	if len(cmds) == 0 {
		return ""
	}
	// EVALSHA and friends carry the script identity, not user data, in the first arg
	return strings.ToUpper(cmds[0])
}

func multiName(multi []rueidis.Completed) string {
	names := make([]string, 0, len(multi))
	for _, c := range multi {
		names = append(names, commandName(c.Commands()))
	}
	return strings.Join(names, ",")
}

func firstError(resps []rueidis.RedisResult) error {
	for _, r := range resps {
		if err := r.Error(); err != nil && !rueidis.IsRedisNil(err) {
			return err
		}
	}
	return nil
}
