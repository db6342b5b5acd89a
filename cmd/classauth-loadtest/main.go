package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	classAuth "github.com/MrEthical07/classAuth"
	"github.com/MrEthical07/classAuth/directory"
	"github.com/MrEthical07/classAuth/jwt"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const loadSecret = "loadtest-secret-loadtest-secret-0123"

type credential struct {
	token string
	role  classAuth.Role
}

func main() {
	var (
		principals  = flag.Int("principals", 10000, "number of principals to seed, split between students and teachers")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase")
		revokeEvery = flag.Int("revoke-every", 50, "revoke every Nth credential before the strict phase; 0 disables")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "classauth-load", "revocation key prefix")
	)
	flag.Parse()

	if *principals <= 0 || *concurrency <= 0 || *ops <= 0 || *revokeEvery < 0 {
		fmt.Fprintln(os.Stderr, "principals, concurrency and ops must be > 0; revoke-every must be >= 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	signer, err := jwt.NewManager(jwt.Config{Secret: []byte(loadSecret)})
	if err != nil {
		fmt.Fprintf(os.Stderr, "signer: %v\n", err)
		os.Exit(1)
	}

	dir := directory.NewMemory()
	creds := make([]credential, *principals)
	fmt.Printf("seeding %d principals...\n", *principals)
	startSeed := time.Now()
	for i := 0; i < *principals; i++ {
		id := fmt.Sprintf("p-%d", i)
		role := classAuth.RoleStudent
		if i%2 == 0 {
			err = dir.AddStudent(directory.StudentRecord{ID: id, Name: id, RollNumber: fmt.Sprintf("R-%d", i), ClassName: "10B"})
		} else {
			role = classAuth.RoleTeacher
			err = dir.AddTeacher(directory.TeacherRecord{ID: id, Name: id, Department: "Science", Subject: "Physics"})
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
			os.Exit(1)
		}
		token, err := signer.CreateAccess(id, time.Hour)
		if err != nil {
			fmt.Fprintf(os.Stderr, "mint failed: %v\n", err)
			os.Exit(1)
		}
		creds[i] = credential{token: token, role: role}
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	cfg := classAuth.DefaultConfig()
	cfg.JWT.Secret = []byte(loadSecret)
	cfg.Revocation.RedisPrefix = *prefix
	engine, err := classAuth.New().
		WithConfig(cfg).
		WithDirectory(dir).
		WithRedis(client).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	revoked := 0
	if *revokeEvery > 0 {
		for i := 0; i < len(creds); i += *revokeEvery {
			if err := engine.RevokeToken(ctx, creds[i].token); err != nil {
				fmt.Fprintf(os.Stderr, "revoke failed: %v\n", err)
				os.Exit(1)
			}
			revoked++
		}
	}
	fmt.Printf("revoked %d credentials\n", revoked)

	jwtOnly := runPhase(*ops, *concurrency, 7919, func(r *rand.Rand) error {
		c := creds[r.Intn(len(creds))]
		_, err := engine.AuthenticateWithMode(ctx, c.token, classAuth.ModeJWTOnly)
		return err
	})
	strict := runPhase(*ops, *concurrency, 6151, func(r *rand.Rand) error {
		c := creds[r.Intn(len(creds))]
		_, err := engine.AuthenticateWithMode(ctx, c.token, classAuth.ModeStrict)
		if errors.Is(err, classAuth.ErrCredentialRevoked) {
			return nil
		}
		return err
	})
	guarded := runPhase(*ops, *concurrency, 4099, func(r *rand.Rand) error {
		c := creds[r.Intn(len(creds))]
		res, err := engine.AuthenticateWithMode(ctx, c.token, classAuth.ModeJWTOnly)
		if err != nil {
			return err
		}
		err = engine.Authorize(res, classAuth.RoleTeacher)
		if c.role == classAuth.RoleStudent && errors.Is(err, classAuth.ErrForbidden) {
			return nil
		}
		return err
	})

	fmt.Println("---- results ----")
	printStats("authenticate/jwt-only", jwtOnly)
	printStats("authenticate/strict", strict)
	printStats("authenticate+authorize", guarded)

	snap := engine.MetricsSnapshot()
	fmt.Printf("engine: success=%d revoked=%d denied=%d backend_failures=%d\n",
		snap.Counters[classAuth.MetricAuthSuccess],
		snap.Counters[classAuth.MetricAuthRevoked],
		snap.Counters[classAuth.MetricAccessDenied],
		snap.Counters[classAuth.MetricAuthBackendFailure],
	)
}

// runPhase runs op ops times across concurrency workers. op returns an
// error only for unexpected outcomes.
func runPhase(ops, concurrency int, seed int64, op func(r *rand.Rand) error) phaseStats {
	var (
		g         errgroup.Group
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		worker := w
		g.Go(func() error {
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*seed))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return nil
				}
				t0 := time.Now()
				err := op(r)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		})
	}
	_ = g.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
