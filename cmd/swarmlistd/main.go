// Command swarmlistd runs a single swarmlist replica as a standalone
// daemon: one robot, talking over a real UDP broadcast transport,
// exposing /healthz, /info and /metrics over HTTP.
//
// Grounded on the teacher's cmd/server/main.go structure (env-var
// config, http.ServeMux, metrics mount) and pkg/node/handlers.go
// (Healthz/Info handler shapes), generalized from key-value node info to
// swarmlist info.
package main

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/arenafleet/swarmlist/internal/logging"
	"github.com/arenafleet/swarmlist/internal/telemetry"
	"github.com/arenafleet/swarmlist/pkg/replica"
	"github.com/arenafleet/swarmlist/pkg/transport/udp"
)

func main() {
	log := logging.Must(os.Getenv("SWARMLISTD_DEBUG") != "")
	defer log.Sync()

	ownerID := envUint32("ROBOT_ID", 1)
	listenAddr := envString("LISTEN_ADDR", ":9000")
	broadcastAddr := envString("BROADCAST_ADDR", "255.255.255.255:9000")
	packetSize := envInt("PACKET_SIZE", 32)
	dropProb := envFloat("DROP_PROBABILITY", 0)
	ticksToInactive := envUint32("TICKS_TO_INACTIVE", 100)
	tickInterval := envDuration("TICK_INTERVAL", 200*time.Millisecond)

	log.Info("boot",
		zap.Uint32("robot_id", ownerID),
		zap.String("listen_addr", listenAddr),
		zap.String("broadcast_addr", broadcastAddr),
	)

	transport, err := udp.New(udp.Config{
		ListenAddr:      listenAddr,
		BroadcastAddr:   broadcastAddr,
		PacketSize:      packetSize,
		DropProbability: dropProb,
	})
	if err != nil {
		log.Fatal("failed to create udp transport", zap.Error(err))
	}
	defer transport.Close()

	r := replica.New(replica.RobotID(ownerID), replica.Config{
		TicksToInactive:             ticksToInactive,
		EntriesShouldBecomeInactive: true,
	}, transport)

	robotIDLabel := strconv.FormatUint(uint64(ownerID), 10)

	go func() {
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()
		for range ticker.C {
			if err := r.SafeControlStep(); err != nil {
				log.Error("control step failed", zap.Error(err))
				continue
			}
			telemetry.Report(robotIDLabel, r, nil)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/info", func(w http.ResponseWriter, _ *http.Request) {
		type resp struct {
			RobotID    uint32  `json:"robot_id"`
			Size       int     `json:"size"`
			NumActive  int64   `json:"num_active"`
			NumMsgsTx  uint64  `json:"num_msgs_tx"`
			NumMsgsRx  uint64  `json:"num_msgs_rx"`
			HighestTTI uint32  `json:"highest_tti"`
			AverageTTI float64 `json:"average_tti"`
		}
		data, _ := json.Marshal(resp{
			RobotID:    ownerID,
			Size:       r.Size(),
			NumActive:  r.NumActive(),
			NumMsgsTx:  r.NumMsgsTx(),
			NumMsgsRx:  r.NumMsgsRx(),
			HighestTTI: r.HighestTTI(),
			AverageTTI: r.AverageTTI(),
		})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	})
	mux.Handle("/metrics", telemetry.MetricsHandler())

	httpAddr := envString("HTTP_ADDR", ":8080")
	log.Info("listening", zap.String("addr", httpAddr))
	if err := http.ListenAndServe(httpAddr, mux); err != nil {
		log.Fatal("http server exited", zap.Error(err))
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envUint32(key string, def uint32) uint32 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			return uint32(n)
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
