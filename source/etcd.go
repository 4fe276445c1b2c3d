package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/zero-day-ai/advreg/advancement"
	"github.com/zero-day-ai/advreg/config"
)

// etcdKV is the subset of *clientv3.Client the source needs.
type etcdKV interface {
	Get(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.GetResponse, error)
	Delete(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.DeleteResponse, error)
	Txn(ctx context.Context) clientv3.Txn
	Watch(ctx context.Context, key string, opts ...clientv3.OpOption) clientv3.WatchChan
}

// defaultTxnOps stays below etcd's default --max-txn-ops of 128.
const defaultTxnOps = 120

// Etcd reads records stored as JSON in generations under a prefix:
//
//	/{prefix}/advancements/current        -> generation id
//	/{prefix}/advancements/gen/{gen}/{id} -> record JSON
//
// Publish writes a complete new generation and then moves the current pointer
// in one transaction, so Load and Watch only ever see whole record sets.
//
// Thread-safety: All methods are safe for concurrent use.
type Etcd struct {
	kv     etcdKV
	closer func() error
	prefix string
	txnOps int

	mu         sync.Mutex
	wg         sync.WaitGroup
	closed     bool
	closedChan chan struct{}
}

// NewEtcd connects to the etcd cluster described by cfg.
//
// Connectivity is verified with a quick read. The source must be closed with
// Close to release the connection and stop watches.
func NewEtcd(cfg *config.EtcdSource) (*Etcd, error) {
	if cfg == nil || len(cfg.Endpoints) == 0 {
		return nil, fmt.Errorf("etcd endpoints cannot be empty")
	}

	clientCfg := clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.GetDialTimeout(),
	}

	tlsConfig, err := clientTLS(cfg.TLS)
	if err != nil {
		return nil, err
	}
	clientCfg.TLS = tlsConfig

	cli, err := clientv3.New(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.GetDialTimeout())
	defer cancel()

	_, err = cli.Get(ctx, "health-check")
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		cli.Close()
		return nil, fmt.Errorf("etcd health check failed: %w", err)
	}

	return newEtcd(cli, cli.Close, cfg.Prefix), nil
}

func newEtcd(kv etcdKV, closer func() error, prefix string) *Etcd {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = "advreg"
	}
	return &Etcd{
		kv:         kv,
		closer:     closer,
		prefix:     prefix,
		txnOps:     defaultTxnOps,
		closedChan: make(chan struct{}),
	}
}

func (e *Etcd) Name() string { return "etcd:" + e.keyPrefix() }

// keyPrefix is /{prefix}/advancements/.
func (e *Etcd) keyPrefix() string {
	return fmt.Sprintf("/%s/advancements/", e.prefix)
}

// pointerKey holds the id of the current generation.
func (e *Etcd) pointerKey() string {
	return e.keyPrefix() + "current"
}

func (e *Etcd) generationPrefix(gen string) string {
	return e.keyPrefix() + "gen/" + gen + "/"
}

func (e *Etcd) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// current returns the current generation id and the revision it was read at.
// An empty id means nothing has been published.
func (e *Etcd) current(ctx context.Context) (string, int64, error) {
	resp, err := e.kv.Get(ctx, e.pointerKey())
	if err != nil {
		return "", 0, fmt.Errorf("failed to read current generation: %w", err)
	}
	var rev int64
	if resp.Header != nil {
		rev = resp.Header.Revision
	}
	if len(resp.Kvs) == 0 {
		return "", rev, nil
	}
	return string(resp.Kvs[0].Value), rev, nil
}

// Load returns every record of the current generation, ordered by key.
// The records are read at the revision of the pointer, so a concurrent
// Publish is either fully visible or not at all.
func (e *Etcd) Load(ctx context.Context) ([]advancement.Record, error) {
	if e.isClosed() {
		return nil, fmt.Errorf("etcd source is closed")
	}

	gen, rev, err := e.current(ctx)
	if err != nil {
		return nil, err
	}
	if gen == "" {
		return []advancement.Record{}, nil
	}

	prefix := e.generationPrefix(gen)
	opts := []clientv3.OpOption{
		clientv3.WithPrefix(),
		clientv3.WithSort(clientv3.SortByKey, clientv3.SortAscend),
	}
	if rev > 0 {
		opts = append(opts, clientv3.WithRev(rev))
	}
	resp, err := e.kv.Get(ctx, prefix, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load advancements: %w", err)
	}

	records := make([]advancement.Record, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		id := strings.TrimPrefix(string(kv.Key), prefix)
		var rec advancement.Record
		if err := json.Unmarshal(kv.Value, &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record %s: %w", id, err)
		}
		if rec.ID == "" {
			rec.ID = id
		}
		if rec.ID != id {
			return nil, fmt.Errorf("record %s stored under key %s", rec.ID, kv.Key)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Publish replaces the record set.
//
// Records are written under a fresh generation in batched transactions, then
// the current pointer is switched and the previous generation deleted in a
// single transaction. Only that last step is visible to Load and Watch. A
// concurrent Publish that moved the pointer first makes this one fail.
func (e *Etcd) Publish(ctx context.Context, records []advancement.Record) error {
	if e.isClosed() {
		return fmt.Errorf("etcd source is closed")
	}

	prev, _, err := e.current(ctx)
	if err != nil {
		return err
	}

	gen := uuid.NewString()
	prefix := e.generationPrefix(gen)

	ops := make([]clientv3.Op, 0, len(records))
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal record %s: %w", rec.ID, err)
		}
		ops = append(ops, clientv3.OpPut(prefix+rec.ID, string(data)))
	}

	batch := e.txnOps
	if batch <= 0 {
		batch = defaultTxnOps
	}
	for start := 0; start < len(ops); start += batch {
		end := min(start+batch, len(ops))
		if _, err := e.kv.Txn(ctx).Then(ops[start:end]...).Commit(); err != nil {
			e.discard(prefix)
			return fmt.Errorf("failed to write generation %s: %w", gen, err)
		}
	}

	unchanged := clientv3.Compare(clientv3.CreateRevision(e.pointerKey()), "=", 0)
	if prev != "" {
		unchanged = clientv3.Compare(clientv3.Value(e.pointerKey()), "=", prev)
	}
	swap := []clientv3.Op{clientv3.OpPut(e.pointerKey(), gen)}
	if prev != "" {
		swap = append(swap, clientv3.OpDelete(e.generationPrefix(prev), clientv3.WithPrefix()))
	}

	resp, err := e.kv.Txn(ctx).If(unchanged).Then(swap...).Commit()
	if err != nil {
		e.discard(prefix)
		return fmt.Errorf("failed to switch to generation %s: %w", gen, err)
	}
	if !resp.Succeeded {
		e.discard(prefix)
		return fmt.Errorf("generation changed concurrently, publish of %s abandoned", gen)
	}
	return nil
}

// discard removes an unpublished generation. Errors are ignored; an orphaned
// generation is never read.
func (e *Etcd) discard(prefix string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _ = e.kv.Delete(ctx, prefix, clientv3.WithPrefix())
}

// Watch reports each switch of the current generation. The channel is closed when ctx is
// canceled, the watch fails or Close is called.
func (e *Etcd) Watch(ctx context.Context) (<-chan struct{}, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, fmt.Errorf("etcd source is closed")
	}

	changes := make(chan struct{}, 1)
	watchChan := e.kv.Watch(ctx, e.pointerKey())

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer close(changes)

		for {
			select {
			case <-ctx.Done():
				return
			case <-e.closedChan:
				return
			case resp, ok := <-watchChan:
				if !ok || resp.Err() != nil {
					return
				}
				if len(resp.Events) > 0 {
					notify(changes)
				}
			}
		}
	}()

	return changes, nil
}

// Close stops all watches and closes the etcd connection.
func (e *Etcd) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	close(e.closedChan)
	e.mu.Unlock()

	e.wg.Wait()

	if e.closer == nil {
		return nil
	}
	return e.closer()
}
