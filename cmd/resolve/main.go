package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"executor-resolver-sol/internal/accounts"
	"executor-resolver-sol/internal/config"
	"executor-resolver-sol/internal/driver"
	"executor-resolver-sol/internal/pkg/logger"
	"executor-resolver-sol/internal/pkg/types"
	"executor-resolver-sol/internal/resolver"
	"executor-resolver-sol/internal/runtime"
	"executor-resolver-sol/internal/svc"

	sdktypes "github.com/blocto/solana-go-sdk/types"
	"github.com/zeromicro/go-zero/core/conf"
	"gopkg.in/yaml.v3"
)

var (
	configFile = flag.String("f", "", "optional config file (rpc/redis/resolver sections)")
	program    = flag.String("program", "iterative", "resolver program: noop | iterative | luttable | base58 program id")
	vaaHex     = flag.String("vaa", "", "vaa body (hex)")
	payer      = flag.String("payer", "", "payer pubkey (base58); empty generates and funds a local payer")
	commit     = flag.Bool("commit", false, "persist round state between rounds")
	substitute = flag.Bool("substitute", false, "substitute placeholders (payer, keypairs) in the printed plan")
)

// 本地生成 payer 时写入的余额
const localPayerLamports = 10_000_000_000

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	var c config.RelayerConfig
	if *configFile != "" {
		conf.MustLoad(*configFile, &c)
	} else {
		c = defaultConfig()
	}
	if err := logger.Init(c.LogConf.ToLogOption()); err != nil {
		return err
	}
	defer logger.Sync()

	vaaBody, err := hex.DecodeString(strings.TrimPrefix(*vaaHex, "0x"))
	if err != nil {
		return fmt.Errorf("invalid -vaa: %w", err)
	}

	var localPayer *types.Pubkey
	switch {
	case *payer != "":
		c.ResolverConf.Payer = *payer
	case c.ResolverConf.Payer == "":
		pk := types.Pubkey(sdktypes.NewAccount().PublicKey)
		localPayer = &pk
		c.ResolverConf.Payer = pk.String()
	}
	c.ResolverConf.Commit = c.ResolverConf.Commit || *commit

	sc, err := svc.NewCoreContext(c)
	if err != nil {
		return err
	}
	defer sc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), c.ResolverConf.Timeout())
	defer cancel()

	if localPayer != nil {
		if err := sc.Ledger.PutAccounts(ctx, &accounts.AccountInfo{Key: *localPayer, Lamports: localPayerLamports}); err != nil {
			return err
		}
	}

	programID, err := sc.Catalog.Lookup(*program)
	if err != nil {
		return fmt.Errorf("invalid -program: %w", err)
	}

	plan, err := sc.Driver.Resolve(ctx, programID, vaaBody)
	if err != nil {
		return err
	}

	groups := plan.Groups
	var signers []string
	if *substitute {
		payerKey, err := types.TryPubkeyFromBase58(c.ResolverConf.Payer)
		if err != nil {
			return err
		}
		sub, err := plan.Substitute(driver.Substitutions{Payer: payerKey})
		if err != nil {
			return err
		}
		groups = sub.Groups
		for idx, acc := range sub.Signers {
			signers = append(signers, fmt.Sprintf("keypair_%02d=%s", idx, types.Pubkey(acc.PublicKey)))
		}
		slices.Sort(signers)
	}

	out, err := yaml.Marshal(newPlanView(plan, groups, signers))
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

func defaultConfig() config.RelayerConfig {
	var c config.RelayerConfig
	c.LogConf.Format = "console"
	c.LogConf.Level = "warn"
	c.RpcConf.TimeoutMs = 5000
	c.ResolverConf.MaxRounds = driver.DefaultMaxRounds
	c.ResolverConf.SeedExamples = true
	c.ResolverConf.RecentSlot = 1
	c.ResolverConf.TimeoutMs = 30000
	rent := runtime.DefaultRent()
	c.RentConf.LamportsPerByteYear = rent.LamportsPerByteYear
	c.RentConf.ExemptionThreshold = rent.ExemptionThreshold
	return c
}

// 以下为 YAML 输出视图：指令数据以 hex 字符串呈现

type planView struct {
	ProgramID    types.Pubkey       `yaml:"program_id"`
	Rounds       []driver.RoundInfo `yaml:"rounds"`
	Groups       []groupView        `yaml:"groups"`
	LookupTables map[string]int     `yaml:"lookup_tables,omitempty"`
	Signers      []string           `yaml:"signers,omitempty"`
}

type groupView struct {
	Instructions        []instructionView `yaml:"instructions"`
	AddressLookupTables []types.Pubkey    `yaml:"address_lookup_tables,omitempty"`
}

type instructionView struct {
	ProgramID types.Pubkey           `yaml:"program_id"`
	Accounts  []resolver.AccountMeta `yaml:"accounts"`
	Data      string                 `yaml:"data"`
}

func newPlanView(plan *driver.Plan, groups resolver.InstructionGroups, signers []string) planView {
	v := planView{ProgramID: plan.ProgramID, Rounds: plan.Rounds, Signers: signers}
	for _, g := range groups {
		gv := groupView{AddressLookupTables: g.AddressLookupTables}
		for _, ix := range g.Instructions {
			gv.Instructions = append(gv.Instructions, instructionView{
				ProgramID: ix.ProgramID,
				Accounts:  ix.Accounts,
				Data:      hex.EncodeToString(ix.Data),
			})
		}
		v.Groups = append(v.Groups, gv)
	}
	if len(plan.LookupTables) > 0 {
		v.LookupTables = make(map[string]int, len(plan.LookupTables))
		for k, addrs := range plan.LookupTables {
			v.LookupTables[k.String()] = len(addrs)
		}
	}
	return v
}
