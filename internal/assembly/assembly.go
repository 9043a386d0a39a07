// Package assembly wires a concrete RunHandle for a given run spec and
// mode, mirroring the teacher's engine.New: one place that constructs and
// connects every component before the run starts.
package assembly

import (
	"fmt"
	"log/slog"

	"mmrl/internal/collector"
	"mmrl/internal/events"
	"mmrl/internal/execution/fillmodel"
	"mmrl/internal/execution/paper"
	"mmrl/internal/execution/position"
	"mmrl/internal/execution/risk"
	"mmrl/internal/journal"
	"mmrl/internal/marketdata/orderbook"
	"mmrl/internal/marketdata/replay"
	"mmrl/internal/runartifacts"
	"mmrl/internal/runspec"
	"mmrl/internal/simbus"
	"mmrl/internal/simengine"
	"mmrl/internal/strategy/fixedspread"
)

// Options configures a single call to Assemble.
type Options struct {
	Spec           *runspec.Spec
	RunID          string
	Paths          runartifacts.Paths
	Logger         *slog.Logger
	JournalDurable bool
	// ReplaySource is required when Spec.MarketData.Mode is
	// runspec.ModeReplayL2 and absent otherwise.
	ReplaySource replay.DataSource
}

// RunHandle is the fully wired set of components for one run, plus the
// engine that drives them.
type RunHandle struct {
	Bus       *simbus.Bus
	Engine    *simengine.Engine
	Router    *simengine.Router
	Risk      *risk.Manager
	Positions *position.Book
	Paper     *paper.Adapter
	Strategy  *fixedspread.Strategy
	Collector *collector.Collector

	Journal       *journal.Writer // nil in paper_no_marketdata
	TickDriver    *simengine.TickDriver
	BookAdapter   *orderbook.Adapter // non-nil only in paper_replay_l2
	ReplayAdapter *replay.Adapter    // non-nil only in paper_replay_l2

	Paths runartifacts.Paths
}

// Assemble builds and wires every component Options.Spec.MarketData.Mode
// requires, registering each on a fresh bus through a Router so the
// wiring snapshot can be persisted to meta.json.
func Assemble(opts Options) (*RunHandle, error) {
	spec := opts.Spec
	bus := simbus.New()
	eng := simengine.New(opts.RunID, bus, opts.Logger)
	router := simengine.NewRouter(bus)

	riskMgr := risk.NewManager(risk.Limits{
		MaxOrderQty:      spec.Risk.MaxOrderQty,
		MaxOrderNotional: spec.Risk.MaxOrderNotional,
		MaxAbsInventory:  spec.Risk.MaxAbsInventory,
	}, opts.Logger.With("component", "risk"))
	positions := position.NewBook()

	handle := &RunHandle{
		Bus: bus, Engine: eng, Router: router,
		Risk: riskMgr, Positions: positions,
		Paths: opts.Paths,
	}

	// event journal + tick driver: present in every mode except the
	// diagnostics-only paper_no_marketdata mode.
	if spec.MarketData.Mode != runspec.ModeNoMarketData {
		jw, err := journal.Open(opts.Paths.EventsJSONL(), opts.JournalDurable)
		if err != nil {
			return nil, err
		}
		handle.Journal = jw
		router.Wire("event_journal", "mmrl/internal/journal.Writer", jw)

		handle.TickDriver = simengine.NewTickDriver(eng, spec.MaxTicks)
		router.Wire("tick_driver", "mmrl/internal/simengine.TickDriver", handle.TickDriver)
	}

	// replay + book adapter: paper_replay_l2 only.
	if spec.MarketData.Mode == runspec.ModeReplayL2 {
		if opts.ReplaySource == nil {
			return nil, fmt.Errorf("assembly: replay data source required for mode %s", runspec.ModeReplayL2)
		}
		handle.BookAdapter = orderbook.NewAdapter(eng)
		router.Wire("book_adapter", "mmrl/internal/marketdata/orderbook.Adapter", handle.BookAdapter)

		handle.ReplayAdapter = replay.NewAdapter(eng, opts.ReplaySource)
		router.Wire("replay_adapter", "mmrl/internal/marketdata/replay.Adapter", handle.ReplayAdapter)
	}

	// execution: every mode wires the paper venue.
	handle.Paper = paper.NewAdapter(eng, riskMgr, fillmodel.TopOfBookFull{}, positions, opts.Logger.With("component", "paper_execution"))
	router.Wire("paper_execution", "mmrl/internal/execution/paper.Adapter", handle.Paper)

	// strategy: every mode wires fixed-spread.
	fs := spec.Strategy.FixedSpread
	handle.Strategy = fixedspread.New(eng, fixedspread.Config{
		Symbol:                spec.Symbol,
		Spread:                fs.Spread,
		OrderSize:             fs.OrderSize,
		MaxInventory:          fs.MaxInventory,
		InventorySkewK:        fs.InventorySkewK,
		MinMidMove:            fs.MinMidMove,
		MinTicksBetweenQuotes: fs.MinTicksBetweenQuotes,
	})
	router.Wire("strategy", "mmrl/internal/strategy/fixedspread.Strategy", handle.Strategy)

	// risk/inventory collector: wired by default in every mode that
	// includes a strategy, per the resolved open question (every mode
	// here includes one).
	handle.Collector = collector.New(positions, riskMgr)
	router.Wire("risk_inventory_collector", "mmrl/internal/collector.Collector", handle.Collector)

	return handle, nil
}

// PublishExternalBBO lets a paper_external_bbo caller inject a BBO
// directly onto the bus, bypassing the book adapter the mode omits.
func (h *RunHandle) PublishExternalBBO(bbo events.BestBidAsk) error {
	return h.Engine.Emit(events.TypeBestBidAsk, bbo)
}

// Close releases any open artifact handles (currently only the journal).
func (h *RunHandle) Close() error {
	if h.Journal != nil {
		return h.Journal.Close()
	}
	return nil
}
