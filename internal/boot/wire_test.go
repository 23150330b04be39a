package boot

import (
	"testing"

	"go-rbacadmin/internal/audit"
	"go-rbacadmin/internal/config"
	"go-rbacadmin/internal/mq/kafka"
	"go-rbacadmin/internal/pkg/cache"
	redisrepo "go-rbacadmin/internal/repository/redis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalDependencies_Disabled(t *testing.T) {
	var c config.Config
	assert.Nil(t, NewRedis(&c))
	assert.Nil(t, NewKafkaProducer(&c))
	e, err := NewEtcd(&c)
	require.NoError(t, err)
	assert.Nil(t, e)

	// 未配置 Redis 时限流器必须是无类型 nil，中间件才会直接放行
	assert.Nil(t, ProvideLimiter(nil))
	assert.Nil(t, ProvideAsyncSender(&c, nil, nil))
}

func TestProvideCaches(t *testing.T) {
	local := ProvideCaches(nil)
	assert.IsType(t, &cache.SimpleCache{}, local.Shared)
	assert.Same(t, local.Shared, local.Config)

	r := redisrepo.New(redisrepo.Config{Addr: "127.0.0.1:0"})
	defer r.Close()
	shared := ProvideCaches(r)
	assert.IsType(t, &cache.RedisAdapter{}, shared.Shared)
	assert.IsType(t, &cache.LayeredCache{}, shared.Config)
}

func TestProvideAuditSink(t *testing.T) {
	assert.IsType(t, &audit.DBSink{}, ProvideAuditSink(nil, nil))

	p := kafka.NewProducer(kafka.Config{Brokers: []string{"127.0.0.1:9092"}, Topic: "t"})
	defer p.Close()
	s := kafka.NewAsyncSender(p, nil, 1, 1, 1, 0)
	assert.IsType(t, &audit.KafkaSink{}, ProvideAuditSink(s, nil))
}
