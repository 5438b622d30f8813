// Package discovery maps the swarmlist's out-of-core "process placement
// of robots" collaborator (spec section 1) onto an etcd-backed registry:
// which process is currently hosting which robot id, for a deployment
// that spreads simulated or real robots across more than one process.
//
// The swarmlist core never imports this package or talks to etcd
// directly -- it is purely a concern of cmd/swarmsim,
// the way the teacher's cmd/server used its own discovery package only
// to bootstrap and watch peers, never touching the kv/ring core with it.
//
// Grounded directly on the teacher's discovery/etcd.go (NewClient,
// RegisterNode via Grant/Put/KeepAlive) and cmd/server/main.go's
// bootstrap/watch sequence (cli.Get with WithPrefix, lease revoke on
// shutdown). The teacher's RegisterNode signature didn't match how
// cmd/server/main.go called it (main.go expected a cancel func back
// alongside the lease id, and called discovery.WatchPeers/GetPeers,
// both left as bare "//TODO" with no definition at all); both gaps are
// filled in here.
package discovery

import (
	"context"
	"fmt"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// KeyPrefix is the etcd key prefix under which robot placement is
// published, analogous to the teacher's "/zephyr/nodes/" prefix.
const KeyPrefix = "/swarmlist/robots/"

// NewClient dials an etcd cluster at the given endpoints.
func NewClient(endpoints []string) (*clientv3.Client, error) {
	return clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: 5 * time.Second,
	})
}

// RegisterRobot publishes that robot id is hosted at addr, under a lease
// that expires after ttlSeconds unless renewed. It returns the lease id
// and a cancel function that stops the keep-alive goroutine; callers
// should defer cancel() and then revoke the lease on shutdown.
func RegisterRobot(cli *clientv3.Client, id, addr string, ttlSeconds int64) (clientv3.LeaseID, func(), error) {
	lease, err := cli.Grant(context.Background(), ttlSeconds)
	if err != nil {
		return 0, nil, err
	}

	key := KeyPrefix + id
	if _, err := cli.Put(context.Background(), key, addr, clientv3.WithLease(lease.ID)); err != nil {
		return 0, nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	keepAlive, err := cli.KeepAlive(ctx, lease.ID)
	if err != nil {
		cancel()
		return 0, nil, err
	}
	go func() {
		for range keepAlive {
			// Drain keep-alive responses; nothing to act on here.
		}
	}()

	return lease.ID, cancel, nil
}

// GetPeers returns every currently-registered robot id to address
// mapping, as a one-shot snapshot.
func GetPeers(cli *clientv3.Client) (map[string]string, error) {
	resp, err := cli.Get(context.Background(), KeyPrefix, clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("discovery: get peers: %w", err)
	}
	peers := make(map[string]string, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		id := string(kv.Key)[len(KeyPrefix):]
		peers[id] = string(kv.Value)
	}
	return peers, nil
}

// WatchPeers calls onChange with a fresh snapshot of every registered
// robot's placement whenever the prefix changes, until ctx is
// cancelled. It blocks, so callers run it in its own goroutine.
func WatchPeers(ctx context.Context, cli *clientv3.Client, onChange func(peers map[string]string)) {
	watch := cli.Watch(ctx, KeyPrefix, clientv3.WithPrefix())
	for range watch {
		peers, err := GetPeers(cli)
		if err != nil {
			continue
		}
		onChange(peers)
	}
}
