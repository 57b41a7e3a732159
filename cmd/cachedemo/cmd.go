package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/crypt0walker/objectcache"
	"github.com/crypt0walker/objectcache/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

const (
	configF         = "config"
	nameF           = "name"
	capacityF       = "capacity"
	evictionF       = "eviction"
	synchronizedF   = "synchronized"
	maxKeyAttemptsF = "max-key-attempts"
	logLevelF       = "log-level"
	workersF        = "workers"
	opsF            = "ops"

	defaultWorkers = 8
	defaultOps     = 10_000

	configUsage         = "The yaml configuration file."
	capacityUsage       = "Cache capacity in bytes."
	evictionUsage       = "Eviction policy. Options: lru, fifo, lfu."
	synchronizedUsage   = "Guard the cache with a reader/writer lock."
	maxKeyAttemptsUsage = "Attempts to draw a unique key before giving up."
	logLevelUsage       = "Log level. Options: debug, info, warn, error."
	workersUsage        = "Number of concurrent workers."
	opsUsage            = "Operations per worker."
)

// NewCmd 构建 cachedemo 命令
func NewCmd() *cobra.Command {
	var cfgFile string
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:           "cachedemo [flags]",
		Short:         "Walk through the object cache: typed cache, generic cache and capacity changes.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, v, cfgFile)
			if err != nil {
				return err
			}
			opts, err := cfg.Options()
			if err != nil {
				return err
			}
			return runDemo(cmd.OutOrStdout(), opts)
		},
	}

	defaults := objectcache.DefaultConfig()
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, configF, "", configUsage)
	flags.String(nameF, defaults.Name, "Cache name used in logs and metrics.")
	flags.Int64(capacityF, defaults.Capacity, capacityUsage)
	flags.String(evictionF, defaults.Eviction, evictionUsage)
	flags.Bool(synchronizedF, defaults.Synchronized, synchronizedUsage)
	flags.Int(maxKeyAttemptsF, defaults.MaxKeyAttempts, maxKeyAttemptsUsage)
	flags.String(logLevelF, "warn", logLevelUsage)

	rootCmd.AddCommand(newStressCmd(v, &cfgFile))
	return rootCmd
}

func newStressCmd(v *viper.Viper, cfgFile *string) *cobra.Command {
	stressCmd := &cobra.Command{
		Use:   "stress [flags]",
		Short: "Hammer one shared cache from several goroutines and print its statistics.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, v, *cfgFile)
			if err != nil {
				return err
			}
			// 多协程共享缓存时必须使用并发安全的同步策略
			cfg.Synchronized = true
			opts, err := cfg.Options()
			if err != nil {
				return err
			}
			return runStress(cmd, cfg.Name, opts, v.GetInt(workersF), v.GetInt(opsF))
		},
	}
	stressCmd.Flags().Int(workersF, defaultWorkers, workersUsage)
	stressCmd.Flags().Int(opsF, defaultOps, opsUsage)
	return stressCmd
}

// loadConfig 依次读取 yaml 配置文件和命令行参数，命令行优先
func loadConfig(cmd *cobra.Command, v *viper.Viper, cfgFile string) (objectcache.Config, error) {
	cfg := objectcache.DefaultConfig()
	if cfgFile != "" {
		v.SetConfigType("yaml")
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", cfgFile, err)
		}
	}
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return cfg, err
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

func runDemo(out io.Writer, opts []objectcache.Option) error {
	fmt.Fprintln(out, "--- Int Cache ---")
	intCache, err := newCache[int](append(opts, objectcache.WithName("int"))...)
	if err != nil {
		return err
	}

	keys := make([]uint64, 0, 10)
	for i := 0; i < 10; i++ {
		key, err := intCache.InsertValue(i)
		if err != nil {
			return err
		}
		keys = append(keys, key)
	}
	printIntCache(out, keys, intCache)

	// 容量限制为 5 个 int
	intSize := objectcache.SizeOf(0)
	intCache.SetCapacity(intSize * 5)
	printIntCache(out, keys, intCache)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "--- Generic Cache ---")
	cache, err := newCache[any](append(opts, objectcache.WithName("generic"))...)
	if err != nil {
		return err
	}
	keys = keys[:0]
	for i := 0; i < 5; i++ {
		key, err := cache.InsertValue(i)
		if err != nil {
			return err
		}
		keys = append(keys, key)
	}
	vals := []int{5, 6, 7, 8, 9}
	key, err := cache.Insert(vals, intSize*int64(len(vals)))
	if err != nil {
		return err
	}
	keys = append(keys, key)
	printCache(out, keys, cache)

	cache.SetCapacity(intSize * 6)
	printCache(out, keys, cache)

	cache.SetCapacity(intSize * 3)
	printCache(out, keys, cache)
	return nil
}

// newCache 与 objectcache.New 相同，但选项非法时返回错误而不是 panic
func newCache[V any](opts ...objectcache.Option) (*objectcache.Cache[uint64, V], error) {
	return objectcache.NewCache[uint64, V](&objectcache.UniformKey{}, nil, opts...)
}

func printIntCache(out io.Writer, keys []uint64, cache *objectcache.Cache[uint64, int]) {
	var sb strings.Builder
	sb.WriteString("Cached: ")
	for _, key := range keys {
		if v, ok := cache.Find(key); ok {
			fmt.Fprintf(&sb, "%d ", v)
		}
	}
	fmt.Fprintln(out, sb.String())
}

func printCache(out io.Writer, keys []uint64, cache *objectcache.ObjectCache) {
	var sb strings.Builder
	sb.WriteString("Cached: ")
	for _, key := range keys {
		v, ok := cache.Find(key)
		if !ok {
			continue
		}
		switch x := v.(type) {
		case int:
			fmt.Fprintf(&sb, "%d ", x)
		case []int:
			for _, n := range x {
				fmt.Fprintf(&sb, "%d ", n)
			}
		}
	}
	fmt.Fprintln(out, sb.String())
}

func runStress(cmd *cobra.Command, name string, opts []objectcache.Option, workers, ops int) error {
	if workers < 1 || ops < 1 {
		return fmt.Errorf("workers and ops must be positive, got %d and %d", workers, ops)
	}

	reg := prometheus.NewRegistry()
	listener, err := metrics.NewListener(reg, name)
	if err != nil {
		return err
	}
	cache, err := newCache[int](append(opts, objectcache.WithName(name), objectcache.WithListener(listener))...)
	if err != nil {
		return err
	}
	if err := metrics.RegisterGauges(reg, cache); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			keys := make([]uint64, 0, ops)
			for i := 0; i < ops; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				v := w*ops + i
				key, err := cache.InsertValue(v)
				if err != nil {
					return err
				}
				keys = append(keys, key)
				// 回头读取更早的 key，其中一部分已被其他协程的插入淘汰
				probe := keys[i/2]
				if got, ok := cache.Find(probe); ok && got != w*ops+i/2 {
					return fmt.Errorf("key %d holds %d, want %d", probe, got, w*ops+i/2)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	stats := cache.Stats()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "entries=%d size=%d capacity=%d\n", cache.Count(), cache.Size(), cache.Capacity())
	fmt.Fprintf(out, "inserts=%d hits=%d misses=%d evictions=%d evicted_bytes=%d\n",
		stats.Inserts, stats.Hits, stats.Misses, stats.Evictions, stats.EvictedBytes)

	families, err := reg.Gather()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "metric families=%d\n", len(families))
	return nil
}
