// Command swarmsim hosts many swarmlist replicas in one process and
// drives them tick by tick over a shared in-process channel medium, the
// way a simulator's loop-function would. This out-of-core-scope driver
// stands in for the simulator/loop driver that spec section 1 names as
// an external collaborator: the core itself knows nothing about ticks
// happening in lockstep across many robots, it only knows how to run
// ControlStep once when asked.
//
// Grounded on original_source/src/loops/ExpLoopFunc.h for the
// responsibilities a loop driver owns (PostStep-equivalent tick-all-robots
// loop, _checkNumMessages-equivalent aggregate counting,
// _finishExperiment-equivalent end-of-run log line) and on the teacher's
// cmd/bench/main.go for the flag-based CLI idiom.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/arenafleet/swarmlist/discovery"
	"github.com/arenafleet/swarmlist/internal/accounting"
	"github.com/arenafleet/swarmlist/pkg/replica"
	"github.com/arenafleet/swarmlist/pkg/transport/simnet"
)

func main() {
	numRobots := flag.Int("robots", 10, "number of simulated robots")
	ticks := flag.Int("ticks", 500, "number of ticks to run")
	packetSize := flag.Int("packet-size", 32, "gossip packet size in bytes")
	dropProb := flag.Float64("drop", 0.0, "probability a broadcast is dropped per recipient")
	ticksToInactive := flag.Uint("ticks-to-inactive", 100, "countdown maximum before an entry is aged out")
	tickInterval := flag.Duration("tick-interval", 0, "real-time delay between ticks; 0 runs as fast as possible")
	forceConsensusAt := flag.Int("force-consensus-at", -1, "tick at which to call ForceConsensus on every replica, seeding a known-synchronized state; -1 disables")
	logPath := flag.String("log", "", "path to write the end-of-run experiment log; empty disables")
	etcdEndpoint := flag.String("etcd", "", "etcd endpoint to register simulated robot placement under; empty disables")
	flag.Parse()

	global := accounting.NewGlobalActive()
	medium := simnet.NewMedium(*packetSize, *dropProb)

	ids := make([]replica.RobotID, *numRobots)
	replicas := make([]*replica.Replica, *numRobots)
	for i := 0; i < *numRobots; i++ {
		id := replica.RobotID(i + 1)
		ids[i] = id
		transport := medium.NewTransport()
		replicas[i] = replica.New(id, replica.Config{
			TicksToInactive:             uint32(*ticksToInactive),
			EntriesShouldBecomeInactive: true,
			Global:                      global,
		}, transport)
	}

	if *etcdEndpoint != "" {
		registerPlacement(*etcdEndpoint, ids)
	}

	start := time.Now()
	var totalMsgsSent uint64

	for tick := 0; tick < *ticks; tick++ {
		if tick == *forceConsensusAt {
			log.Printf("[swarmsim] tick %d: forcing consensus across %d robots", tick, len(replicas))
			for _, r := range replicas {
				r.ForceConsensus(ids)
			}
		}

		for _, r := range replicas {
			if err := r.SafeControlStep(); err != nil {
				log.Printf("[swarmsim] replica error: %v", err)
			}
		}

		if *tickInterval > 0 {
			time.Sleep(*tickInterval)
		}
	}

	for _, r := range replicas {
		totalMsgsSent += r.NumMsgsTx()
	}

	dur := time.Since(start)
	summary := fmt.Sprintf(
		"robots=%d ticks=%d duration=%s total_msgs_sent=%d global_active=%d",
		*numRobots, *ticks, dur, totalMsgsSent, global.Total(),
	)
	fmt.Println(summary)

	if *logPath != "" {
		finishExperiment(*logPath, summary, replicas)
	}
}

// registerPlacement publishes each simulated robot's id under a
// loopback address with a short-lived lease, the way a real deployment
// would publish where each robot's process actually lives. Best-effort:
// a failed registration only logs, it does not abort the run.
func registerPlacement(endpoint string, ids []replica.RobotID) {
	cli, err := discovery.NewClient([]string{endpoint})
	if err != nil {
		log.Printf("[swarmsim] etcd client: %v", err)
		return
	}
	defer cli.Close()

	for _, id := range ids {
		addr := fmt.Sprintf("127.0.0.1:%d", 9000+id)
		idStr := strconv.FormatUint(uint64(id), 10)
		if _, cancel, err := discovery.RegisterRobot(cli, idStr, addr, 30); err != nil {
			log.Printf("[swarmsim] register robot %s: %v", idStr, err)
		} else {
			defer cancel()
		}
	}
}

// finishExperiment writes the run summary and each replica's final
// serialized entry table to logPath, matching the responsibility
// original_source's ExpLoopFunc::_finishExperiment describes (writing
// experiment data to a log file when the run ends).
func finishExperiment(logPath, summary string, replicas []*replica.Replica) {
	f, err := os.Create(logPath)
	if err != nil {
		log.Printf("[swarmsim] could not open log file: %v", err)
		return
	}
	defer f.Close()

	fmt.Fprintln(f, summary)
	for _, r := range replicas {
		fmt.Fprintln(f, r.String(), r.SerializeData(':', ';'))
	}
}
