// Command workload runs a single iteration of the chaos/property-testing
// harness's execution pipeline (spec.md §4.7, §6): it loads its config and
// persisted model, builds and executes the one step type named on its
// command line, verifies the result, persists the updated model, and exits
// with the classified status code spec.md §6 defines. Each invocation is
// one shot — the fault framework driving this harness is expected to invoke
// the binary repeatedly rather than loop inside it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"namada-resilience-test/config"
	"namada-resilience-test/crypto"
	"namada-resilience-test/internal/classify"
	"namada-resilience-test/internal/retry"
	"namada-resilience-test/observability/logging"
	telemetry "namada-resilience-test/observability/otel"
	"namada-resilience-test/workload/check"
	"namada-resilience-test/workload/model"
	"namada-resilience-test/workload/pipeline"
	"namada-resilience-test/workload/query"
	"namada-resilience-test/workload/stats"
	"namada-resilience-test/workload/step"
	"namada-resilience-test/workload/task"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to the worker's TOML configuration file (required)")
	noCheck := flag.Bool("no-check", false, "skip post-execution checks (for bootstrap steps)")
	stateDir := flag.String("state-dir", ".", "directory holding state-<id>.json and wallet-<id>/")
	flag.Parse()

	if strings.TrimSpace(*configPath) == "" {
		fmt.Fprintln(os.Stderr, "workload: --config is required")
		return classify.BuildFailure.ExitCode()
	}
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "workload: exactly one step-type positional argument is required")
		return classify.BuildFailure.ExitCode()
	}
	stepType := flag.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "workload: load config: %v\n", err)
		return classify.InitFatal.ExitCode()
	}

	env := strings.TrimSpace(os.Getenv("NAMADA_RESILIENCE_ENV"))
	log := logging.Setup(fmt.Sprintf("workload-%d", cfg.ID), env)

	shutdownTelemetry, err := telemetry.Init(context.Background(), telemetry.Config{
		ServiceName: fmt.Sprintf("workload-%d", cfg.ID),
		Environment: env,
		Endpoint:    strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		Insecure:    true,
		Metrics:     true,
		Traces:      true,
	})
	if err != nil {
		log.Warn("telemetry init failed, continuing without it", slog.Any("err", err))
	} else {
		defer shutdownTelemetry(context.Background())
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	chainConn, err := grpc.NewClient(cfg.RPC,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
	if err != nil {
		log.Error("dial chain rpc failed", slog.Any("err", err))
		return classify.InitFatal.ExitCode()
	}
	defer chainConn.Close()

	cosmosConn, err := query.DialCosmos(cfg.CosmosGRPC)
	if err != nil {
		log.Error("dial cosmos grpc failed", slog.Any("err", err))
		return classify.InitFatal.ExitCode()
	}
	defer cosmosConn.Close()

	retryPolicy := retry.Default()
	rawChain := query.NewChainQuerier(chainConn)
	chain := query.WithRetry(rawChain, retryPolicy, log)
	cosmos := query.NewCosmosQuerier(cosmosConn)
	indexer := query.NewMaspIndexerClient(cfg.MaspIndexerURL)
	shielded := &query.ShieldedSource{Strategy: query.SyncSourceIndexerThenNode, Indexer: indexer, Node: chain}

	walletDir := filepath.Join(*stateDir, fmt.Sprintf("wallet-%d", cfg.ID))
	wallet, err := crypto.OpenWallet(walletDir)
	if err != nil {
		log.Error("open wallet failed", logging.MaskField("wallet_dir", walletDir), slog.Any("err", err))
		return classify.InitFatal.ExitCode()
	}
	passphrase := os.Getenv("NAMADA_RESILIENCE_KEYSTORE_PASSPHRASE")
	if err := seedFaucetKey(wallet, cfg.FaucetSK, passphrase); err != nil {
		log.Error("seed faucet key failed",
			logging.MaskField("faucet_sk", cfg.FaucetSK),
			logging.MaskField("wallet_dir", walletDir),
			slog.Any("err", err))
		return classify.InitFatal.ExitCode()
	}

	taskEnv := &task.Env{
		Chain:       chain,
		Cosmos:      cosmos,
		Shielded:    shielded,
		Wallet:      wallet,
		Signer:      task.NewSigner(wallet),
		Broadcaster: task.NewBroadcaster(chainConn),
		Retry:       retryPolicy,
		Log:         log,
	}
	checkEnv := &check.Env{
		Chain:    chain,
		Cosmos:   cosmos,
		Shielded: shielded,
		Resolve:  taskEnv.Resolve,
		Retry:    retryPolicy,
		Log:      log,
	}

	statePath := model.StatePath(*stateDir, cfg.ID)
	seed := cfg.Seed
	if seed == 0 {
		seed = cfg.ID
	}
	state, err := model.Load(statePath, seed)
	if err != nil {
		log.Error("load state failed", slog.Any("err", err))
		return classify.StateFatal.ExitCode()
	}
	defer func() {
		if err := state.Snapshot(statePath); err != nil {
			log.Error("snapshot state failed", slog.Any("err", err))
		}
	}()

	channels := step.Channels{SrcChannel: cfg.NamadaChannelID, DstChannel: cfg.CosmosChannelID}
	p := &pipeline.Pipeline{Env: taskEnv, CheckEnv: checkEnv, NoCheck: *noCheck, Log: log}
	st := stats.New(log)

	var outcome classify.Outcome
	switch stepType {
	case "initialize":
		outcome = runInitialize(ctx, p, state, log)
	case "fund-all":
		outcome = runFundAll(ctx, p, state, log)
	default:
		s, ok := stepByCLIName(stepType, channels)
		if !ok {
			fmt.Fprintf(os.Stderr, "workload: unknown step type %q\n", stepType)
			return classify.BuildFailure.ExitCode()
		}
		sel := step.NewSelector([]step.Step{s}, []float64{1})
		p.Selector = sel
		outcome = p.RunIteration(ctx, state)
	}

	acceptable := false
	if outcome.Details != nil {
		if v, ok := outcome.Details["acceptable"].(bool); ok {
			acceptable = v
		}
	}
	st.Record(outcome, acceptable)
	log.Info("iteration complete", slog.String("step", outcome.Step), slog.String("outcome", outcome.Kind.String()))
	fmt.Println(st.Summary())

	return outcome.Kind.ExitCode()
}

// seedFaucetKey loads the configured faucet secret key into the wallet
// under the reserved model.FaucetAlias identity if not already present.
// Unlike every other wallet entry, which is an ephemeral generated test
// identity persisted in plaintext wallet.toml, the faucet key is a
// long-lived secret sourced from config, so it is kept at rest in an
// encrypted Ethereum v3 keystore file instead (Wallet.PutEncrypted).
func seedFaucetKey(wallet *crypto.Wallet, faucetSKHex, passphrase string) error {
	if _, ok, err := wallet.GetEncrypted(string(model.FaucetAlias), passphrase); err != nil {
		return fmt.Errorf("load faucet keystore: %w", err)
	} else if ok {
		return nil
	}
	raw, err := hexDecode(faucetSKHex)
	if err != nil {
		return fmt.Errorf("decode faucet_sk: %w", err)
	}
	key, err := crypto.PrivateKeyFromBytes(raw)
	if err != nil {
		return fmt.Errorf("parse faucet_sk: %w", err)
	}
	if err := wallet.PutEncrypted(string(model.FaucetAlias), key, passphrase); err != nil {
		return fmt.Errorf("persist faucet keystore: %w", err)
	}
	return nil
}

func hexDecode(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	out := make([]byte, len(s)/2)
	for i := 0; i < len(out); i++ {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return nil, err
		}
		out[i] = byte(v)
	}
	return out, nil
}

// runInitialize seeds a fresh worker's wallet and model with the initial
// implicit/established accounts spec.md §6's INIT_IMPLICIT_ADDR_NUM and
// INIT_ESTABLISHED_ADDR_NUM constants name, funding each implicit account
// from the faucet (the established accounts are not funded).
// This bootstrap step never runs post-checks: it exists to stand the model
// up before any sampled step becomes valid.
func runInitialize(ctx context.Context, p *pipeline.Pipeline, state *model.State, log *slog.Logger) classify.Outcome {
	p.NoCheck = true
	implicitSteps := []step.Step{step.NewWalletKeyPairStep{}}
	sel := step.NewSelector(implicitSteps, []float64{1})
	p.Selector = sel

	var created []model.Alias
	for i := 0; i < model.InitImplicitAddrNum; i++ {
		before := state.Accounts()
		outcome := p.RunIteration(ctx, state)
		if outcome.Kind != classify.Success {
			log.Error("initialize: create implicit account failed", slog.String("outcome", outcome.Kind.String()))
			return classify.Outcome{Kind: classify.InitFatal, Step: "initialize", Err: outcome.Err}
		}
		created = append(created, newAliases(before, state.Accounts())...)
	}

	for _, alias := range created {
		tasks := []task.Task{&task.FaucetTransfer{
			Target: alias, Amount: model.FaucetAmount,
			Set: task.Settings{Signers: []model.Alias{model.FaucetAlias}, GasPayer: model.FaucetAlias, GasLimit: model.DefaultGasLimit},
		}}
		outcome := p.RunTasks(ctx, state, "initialize-fund", tasks)
		if outcome.Kind != classify.Success {
			log.Error("initialize: fund implicit account failed", slog.String("outcome", outcome.Kind.String()))
			return classify.Outcome{Kind: classify.InitFatal, Step: "initialize", Err: outcome.Err}
		}
	}

	for i := 0; i < model.InitEstablishedAddrNum && len(created) > 0; i++ {
		source := created[i%len(created)]
		alias := model.Alias(fmt.Sprintf("workload-generator-established-%d", i))
		tasks := []task.Task{&task.InitAccount{
			Alias: alias, PublicKeys: []model.Alias{source}, Threshold: 1,
			Set: task.Settings{Signers: []model.Alias{source}, GasPayer: model.FaucetAlias, GasLimit: model.DefaultGasLimit},
		}}
		outcome := p.RunTasks(ctx, state, "initialize-established", tasks)
		if outcome.Kind != classify.Success {
			log.Error("initialize: establish account failed", slog.String("outcome", outcome.Kind.String()))
			return classify.Outcome{Kind: classify.InitFatal, Step: "initialize", Err: outcome.Err}
		}
	}

	return classify.Outcome{Kind: classify.Success, Step: "initialize"}
}

// runFundAll transfers model.FaucetAmount from the faucet to every known
// alias, whatever its current balance, per spec.md §6's fund-all bootstrap
// step type.
func runFundAll(ctx context.Context, p *pipeline.Pipeline, state *model.State, log *slog.Logger) classify.Outcome {
	p.NoCheck = true
	for _, alias := range state.Accounts() {
		if alias.IsFaucet() {
			continue
		}
		tasks := []task.Task{&task.FaucetTransfer{
			Target: alias, Amount: model.FaucetAmount,
			Set: task.Settings{Signers: []model.Alias{model.FaucetAlias}, GasPayer: model.FaucetAlias, GasLimit: model.DefaultGasLimit},
		}}
		outcome := p.RunTasks(ctx, state, "fund-all", tasks)
		if outcome.Kind != classify.Success {
			log.Error("fund-all: transfer failed", slog.String("alias", string(alias)), slog.String("outcome", outcome.Kind.String()))
			return classify.Outcome{Kind: classify.InitFatal, Step: "fund-all", Err: outcome.Err}
		}
	}
	return classify.Outcome{Kind: classify.Success, Step: "fund-all"}
}

func newAliases(before, after []model.Alias) []model.Alias {
	seen := make(map[model.Alias]bool, len(before))
	for _, a := range before {
		seen[a] = true
	}
	var out []model.Alias
	for _, a := range after {
		if !seen[a] {
			out = append(out, a)
		}
	}
	return out
}

// stepByCLIName maps spec.md §6's lower-case step-type names to a Step
// instance. The CLI name doesn't always match Step.Name() (e.g. "shielded"
// on the command line is the ShieldedTransferStep).
func stepByCLIName(name string, channels step.Channels) (step.Step, bool) {
	switch name {
	case "new-wallet-key-pair":
		return step.NewWalletKeyPairStep{}, true
	case "faucet-transfer":
		return step.FaucetTransferStep{}, true
	case "transparent-transfer":
		return step.TransparentTransferStep{}, true
	case "shielding":
		return step.ShieldingStep{}, true
	case "shielded":
		return step.ShieldedTransferStep{}, true
	case "unshielding":
		return step.UnshieldingStep{}, true
	case "bond":
		return step.BondStep{}, true
	case "unbond":
		return step.UnbondStep{}, true
	case "redelegate":
		return step.RedelegateStep{}, true
	case "claim-rewards":
		return step.ClaimRewardsStep{}, true
	case "init-account":
		return step.InitAccountStep{}, true
	case "update-account":
		return step.UpdateAccountStep{}, true
	case "become-validator":
		return step.BecomeValidatorStep{}, true
	case "deactivate-validator":
		return step.DeactivateValidatorStep{}, true
	case "reactivate-validator":
		return step.ReactivateValidatorStep{}, true
	case "change-metadata":
		return step.ChangeMetadataStep{}, true
	case "change-consensus-key":
		return step.ChangeConsensusKeyStep{}, true
	case "default-proposal":
		return step.DefaultProposalStep{}, true
	case "vote":
		return step.VoteStep{}, true
	case "batch-bond":
		return step.BatchBondStep{}, true
	case "batch-random":
		return step.BatchRandomStep{}, true
	case "ibc-transfer-send":
		return step.IbcTransferSendStep{Channels: channels}, true
	case "ibc-transfer-recv":
		return step.IbcTransferRecvStep{Channels: channels}, true
	case "ibc-shielding-transfer":
		return step.IbcShieldingTransferStep{Channels: channels}, true
	case "ibc-unshielding-transfer":
		return step.IbcUnshieldingTransferStep{Channels: channels}, true
	default:
		return nil, false
	}
}
