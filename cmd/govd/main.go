// Copyright 2025 The swift-governance-contract Authors
// This file is part of the swift-governance-contract library.
//
// The swift-governance-contract library is free software: you can redistribute
// it and/or modify it under the terms of the GNU Lesser General Public License
// as published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// The swift-governance-contract library is distributed in the hope that it
// will be useful, but WITHOUT ANY WARRANTY; without even the implied warranty
// of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the swift-governance-contract library. If not, see
// <http://www.gnu.org/licenses/>.

// govd runs the governance engine behind an HTTP API, backed by the
// reference in-process token ledger.
package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/winsznx/swift-governance-contract/api"
	"github.com/winsznx/swift-governance-contract/governance"
	"github.com/winsznx/swift-governance-contract/token"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "govd",
		Short:         "Token-weighted governance engine daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	cmd.Flags().String("listen", ":8080", "HTTP listen address")
	cmd.Flags().String("owner", "", "governance owner address (hex, required)")
	cmd.Flags().String("ledger", "", "token ledger caller address (hex)")
	cmd.Flags().String("treasury", "", "treasury account address (hex)")
	cmd.Flags().String("proposal-threshold", "", "minimum voting power to create proposals")
	cmd.Flags().String("quorum-threshold", "", "minimum total votes for a proposal to pass")
	cmd.Flags().Int("verbosity", 3, "log verbosity (0=crit .. 5=trace)")

	viper.SetEnvPrefix("GOVD")
	viper.AutomaticEnv()
	_ = viper.BindPFlags(cmd.Flags())

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	// .env is a development convenience; a missing file is not an error.
	_ = godotenv.Load()

	handler := log.NewTerminalHandlerWithLevel(os.Stderr, log.FromLegacyLevel(viper.GetInt("verbosity")), true)
	log.SetDefault(log.NewLogger(handler))

	ownerHex := viper.GetString("owner")
	if ownerHex == "" {
		return errors.New("an owner address is required (--owner or GOVD_OWNER)")
	}
	owner := common.HexToAddress(ownerHex)
	if owner == (common.Address{}) {
		return errors.New("owner must not be the zero address")
	}

	ledgerID := addressOr(viper.GetString("ledger"), common.BytesToAddress([]byte("token-ledger")))
	treasury := addressOr(viper.GetString("treasury"), common.BytesToAddress([]byte("governance-treasury")))

	cfg := governance.DefaultConfig()
	if err := overrideThreshold(&cfg.ProposalThreshold, viper.GetString("proposal-threshold")); err != nil {
		return err
	}
	if err := overrideThreshold(&cfg.QuorumThreshold, viper.GetString("quorum-threshold")); err != nil {
		return err
	}

	tokens := token.NewLedger(ledgerID, owner)
	ledger := governance.NewPowerLedger(tokens, ledgerID)
	tokens.BindGovernance(ledger, treasury)
	registry := governance.NewAccessRegistry(owner)
	store := governance.NewProposalStore()
	dispatcher := governance.NewExecutionDispatcher(tokens)
	engine := governance.NewEngine(cfg, registry, ledger, store, dispatcher)

	log.Info("Governance engine initialized",
		"owner", owner,
		"ledger", ledgerID,
		"treasury", treasury,
		"proposalThreshold", cfg.ProposalThreshold,
		"quorumThreshold", cfg.QuorumThreshold)

	server := api.NewServer(engine, viper.GetString("listen"))
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info("Shutting down", "signal", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

func addressOr(hex string, fallback common.Address) common.Address {
	if hex == "" {
		return fallback
	}
	return common.HexToAddress(hex)
}

func overrideThreshold(dst **big.Int, value string) error {
	if value == "" {
		return nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok || parsed.Sign() < 0 {
		return fmt.Errorf("invalid threshold %q", value)
	}
	*dst = parsed
	return nil
}
