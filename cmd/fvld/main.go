// Command fvld is the sequencer daemon: it owns the single World/Sequencer
// writer, serves transaction submission and read-only queries over HTTP
// (§6 "HTTP surface"), and runs the settlement submitter as a background
// loop (§4.5).
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/finvault/fvl/internal/logx"
	"github.com/finvault/fvl/pkg/block"
	"github.com/finvault/fvl/pkg/blocklog"
	"github.com/finvault/fvl/pkg/db"
	"github.com/finvault/fvl/pkg/ir"
	"github.com/finvault/fvl/pkg/sequencer"
	"github.com/finvault/fvl/pkg/settlement"
	"github.com/finvault/fvl/pkg/settlementstore"
	"github.com/finvault/fvl/pkg/world"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dataDir := os.Getenv("FVL_DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		logx.Fatal("create data dir: %v", err)
	}

	adminHex := os.Getenv("FVL_ADMIN_ADDRESS")
	if adminHex == "" {
		logx.Fatal("FVL_ADMIN_ADDRESS is required")
	}
	admin, err := ir.ParseAddress(adminHex)
	if err != nil {
		logx.Fatal("FVL_ADMIN_ADDRESS: %v", err)
	}

	log, err := blocklog.Open(filepath.Join(dataDir, "blocks.log"))
	if err != nil {
		logx.Fatal("open block log: %v", err)
	}
	defer log.Close()
	if err := log.Scan(); err != nil {
		logx.Fatal("scan block log: %v", err)
	}

	w, seq, err := sequencer.Rebuild(admin, log, sequencer.WallClock)
	if err != nil {
		logx.Fatal("replay block log: %v", err)
	}
	logx.Info("replayed %d blocks, tip=%d", log.Len(), seq.Tip())

	if rpcURL := os.Getenv("FVL_RPC_URL"); rpcURL != "" {
		contractAddress := os.Getenv("FVL_CONTRACT_ADDRESS")
		if path := os.Getenv("FVL_CONTRACT_FILE"); path != "" {
			raw, err := os.ReadFile(path)
			if err != nil {
				logx.Fatal("read contract file: %v", err)
			}
			var d settlementstore.ContractDescriptor
			if err := json.Unmarshal(raw, &d); err != nil {
				logx.Fatal("parse contract file: %v", err)
			}
			contractAddress = d.Address
		}
		signingKey := os.Getenv("FVL_SIGNING_KEY")

		sub := &settlement.Submitter{
			Client:         settlement.New(rpcURL, contractAddress, signingKey),
			Log:            log,
			SubmitInterval: envUint64("FVL_SUBMIT_INTERVAL", 1),
			PollInterval:   envDuration("FVL_POLL_INTERVAL", 10*time.Second),
		}
		if dsn := os.Getenv("FVL_SETTLEMENT_DB"); dsn != "" {
			pool, err := db.Connect(dsn)
			if err != nil {
				logx.Fatal("connect settlement db: %v", err)
			}
			defer pool.Close()
			store := settlementstore.New(pool)
			if err := store.SaveContractDescriptor(ctx, settlementstore.ContractDescriptor{
				Address:  contractAddress,
				Deployer: adminHex,
				Network:  os.Getenv("FVL_NETWORK"),
				RPCURL:   rpcURL,
			}); err != nil {
				logx.Warn("save contract descriptor: %v", err)
			}
			sub.Store = store
		}

		go sub.Run(ctx)
		logx.Info("settlement submitter started against %s", rpcURL)
	} else {
		logx.Info("FVL_RPC_URL unset, settlement submission disabled")
	}

	srv := &server{world: w, seq: seq, log: log}

	port := os.Getenv("FVL_HTTP_PORT")
	if port == "" {
		port = "8090"
	}
	httpServer := &http.Server{Addr: ":" + port, Handler: srv.router()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logx.Warn("http shutdown: %v", err)
		}
	}()

	logx.Info("fvld listening on :%s", port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logx.Fatal("http server: %v", err)
	}
	logx.Info("fvld stopped")
}

type server struct {
	world *world.World
	seq   *sequencer.Sequencer
	log   *blocklog.Log
}

func (s *server) router() chi.Router {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/fvl", func(api chi.Router) {
		api.Post("/tx/deploy", s.handleDeploy)
		api.Post("/tx/transfer", s.handleTransfer)
		api.Post("/tx/mint", s.handleMint)
		api.Post("/tx/interact", s.handleInteract)
		api.Post("/tx/oracle-update", s.handleOracleUpdate)

		api.Get("/state/balance/{address}", s.handleBalance)
		api.Get("/state/system/{system_id}", s.handleSystem)
		api.Get("/state/system/{system_id}/source", s.handleSystemSource)
		api.Get("/blocks/tip", s.handleTip)
		api.Get("/blocks/{number}", s.handleBlock)
	})

	return r
}

func envUint64(name string, def uint64) uint64 {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func envDuration(name string, def time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func blockView(b block.Block) map[string]any {
	return map[string]any{
		"number":      b.Number,
		"parent_hash": hexOf(b.ParentHash[:]),
		"timestamp":   b.Timestamp,
		"tx":          b.Tx,
		"receipt":     b.Receipt,
		"state_root":  hexOf(b.StateRoot[:]),
		"hash":        hexOf(b.Hash[:]),
	}
}

func hexOf(b []byte) string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, 2+len(b)*2)
	out[0], out[1] = '0', 'x'
	for i, c := range b {
		out[2+i*2] = hexDigits[c>>4]
		out[3+i*2] = hexDigits[c&0xf]
	}
	return string(out)
}
