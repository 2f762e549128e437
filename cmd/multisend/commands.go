package main

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/shivamsri07/mutisend-sdk/pkg/batch"
	"github.com/shivamsri07/mutisend-sdk/pkg/db"
	"github.com/shivamsri07/mutisend-sdk/pkg/history"
	"github.com/shivamsri07/mutisend-sdk/pkg/wallet"
)

var transferFlags = []cli.Flag{
	&cli.StringSliceFlag{Name: "to", Usage: "recipient of a native transfer (repeatable, paired with --value)"},
	&cli.StringSliceFlag{Name: "value", Usage: "native amount in ether (repeatable)"},
	&cli.StringSliceFlag{Name: "token", Usage: "ERC20 contract of a token transfer (repeatable, paired with --token-to and --amount)"},
	&cli.StringSliceFlag{Name: "token-to", Usage: "recipient of a token transfer (repeatable)"},
	&cli.StringSliceFlag{Name: "amount", Usage: "token amount in the token's smallest unit (repeatable)"},
}

func runPreview(c *cli.Context, log *logrus.Logger) error {
	signer, b, err := setup(c, log)
	if err != nil {
		return err
	}
	defer signer.Close()

	preview, err := b.GetGasEstimatePreview(c.Context, signer)
	if err != nil {
		return err
	}
	congestion, err := batch.GetNetworkCongestion(c.Context, signer)
	if err != nil {
		return err
	}
	suggested := batch.TierForCongestion(congestion)

	out := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintf(out, "transactions\t%d\n", b.Count())
	fmt.Fprintf(out, "total value\t%s\n", batch.FormatEther(b.TotalValue()))
	fmt.Fprintf(out, "estimated gas\t%d\n", preview.EstimatedGas)
	fmt.Fprintf(out, "gas limit\t%d\n", batch.BufferedGasLimit(preview.EstimatedGas))
	fmt.Fprintf(out, "congestion\t%s\n", congestion)
	for _, tier := range []batch.Tier{batch.TierSlow, batch.TierAverage, batch.TierFast} {
		estimate := preview.Tier(tier)
		marker := ""
		if tier == suggested {
			marker = "  (suggested)"
		}
		fmt.Fprintf(out, "%s\t%s wei\t%s%s\n", tier, estimate.Price, estimate.Cost, marker)
	}
	return out.Flush()
}

func runSend(c *cli.Context, log *logrus.Logger) error {
	signer, b, err := setup(c, log)
	if err != nil {
		return err
	}
	defer signer.Close()

	dbConfig := db.NewConfigFromEnv()
	if dbConfig.Enabled() {
		gormDB, err := db.SetupDatabase(log, dbConfig)
		if err != nil {
			return err
		}
		b.SetRecorder(history.NewStore(log, gormDB))
	}

	var settings *batch.GasSettings
	if name := c.String("tier"); name != "" {
		tier, err := parseTier(name)
		if err != nil {
			return err
		}
		preview, err := b.GetGasEstimatePreview(c.Context, signer)
		if err != nil {
			return err
		}
		chosen := preview.Tier(tier)
		settings = &batch.GasSettings{
			GasLimit:      batch.BufferedGasLimit(preview.EstimatedGas),
			GasPrice:      chosen.Price,
			EstimatedCost: chosen.Cost,
			Tier:          tier,
		}
	}

	result, err := b.ExecuteBatch(c.Context, signer, settings)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "%s %s gas_used=%d effective_gas_price=%s\n",
		result.Status, result.TransactionHash.Hex(), result.GasUsed, result.EffectiveGasPrice)
	return nil
}

func runDecode(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("decode expects exactly one hex argument", 2)
	}

	txs, err := decodeBatch(c.Args().First())
	if err != nil {
		return err
	}

	out := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	for i, tx := range txs {
		line := fmt.Sprintf("%d\t%s\t%s", i, tx.To.Hex(), batch.FormatEther(tx.Value))
		if recipient, amount, err := batch.DecodeERC20Transfer(tx.Data); err == nil {
			line += fmt.Sprintf("\ttransfer(%s, %s)", recipient.Hex(), amount)
		} else if len(tx.Data) > 0 {
			line += "\t0x" + hex.EncodeToString(tx.Data)
		}
		fmt.Fprintln(out, line)
	}
	return out.Flush()
}

func runHistory(c *cli.Context, log *logrus.Logger) error {
	dbConfig := db.NewConfigFromEnv()
	if !dbConfig.Enabled() {
		return cli.Exit("history needs DB_HOST to be set", 2)
	}
	gormDB, err := db.SetupDatabase(log, dbConfig)
	if err != nil {
		return err
	}

	rows, err := history.NewStore(log, gormDB).Recent(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}

	out := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		fmt.Fprintf(out, "%s\t%s\t%d txs\t%s wei\t%s\t%s\n",
			row.ExecutedAt.Format("2006-01-02 15:04:05"), row.TxHash, row.TxCount, row.TotalValue, row.Tier, row.Status)
	}
	return out.Flush()
}

func runSchema(c *cli.Context, log *logrus.Logger) error {
	dbConfig := db.NewConfigFromEnv()
	if !dbConfig.Enabled() {
		return cli.Exit("schema needs DB_HOST to be set", 2)
	}
	if _, err := db.SetupDatabase(log, dbConfig); err != nil {
		return err
	}

	version, dirty, err := db.MigrationStatus(log, dbConfig)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "schema version %d dirty=%t\n", version, dirty)
	return nil
}

// setup connects the signer and queues the transfers given on the command line.
func setup(c *cli.Context, log *logrus.Logger) (*wallet.Signer, *batch.Batch, error) {
	proxy, err := wallet.ParseAddress(os.Getenv("MULTISEND_PROXY_ADDRESS"))
	if err != nil {
		return nil, nil, fmt.Errorf("MULTISEND_PROXY_ADDRESS: %w", err)
	}

	b := batch.New(log, proxy)
	if err := queueTransfers(b, c); err != nil {
		return nil, nil, err
	}
	if b.Count() == 0 {
		return nil, nil, cli.Exit("no transfers given; use --to/--value or --token/--token-to/--amount", 2)
	}

	config, err := wallet.NewNetworkConfigFromEnv()
	if err != nil {
		return nil, nil, err
	}
	signer, err := wallet.NewSigner(c.Context, log, config, os.Getenv("PRIVATE_KEY"))
	if err != nil {
		return nil, nil, err
	}
	return signer, b, nil
}

func queueTransfers(b *batch.Batch, c *cli.Context) error {
	return queueFromLists(b,
		c.StringSlice("to"), c.StringSlice("value"),
		c.StringSlice("token"), c.StringSlice("token-to"), c.StringSlice("amount"))
}

// queueFromLists pairs the repeated flags by position.
func queueFromLists(b *batch.Batch, to, values, tokens, tokenTo, amounts []string) error {
	if len(to) != len(values) {
		return fmt.Errorf("got %d --to and %d --value flags", len(to), len(values))
	}
	if len(tokens) != len(tokenTo) || len(tokens) != len(amounts) {
		return fmt.Errorf("got %d --token, %d --token-to and %d --amount flags", len(tokens), len(tokenTo), len(amounts))
	}

	for i := range to {
		recipient, err := wallet.ParseAddress(to[i])
		if err != nil {
			return err
		}
		if err := b.AddEtherTransfer(recipient, values[i]); err != nil {
			return err
		}
	}

	for i := range tokens {
		token, err := wallet.ParseAddress(tokens[i])
		if err != nil {
			return err
		}
		recipient, err := wallet.ParseAddress(tokenTo[i])
		if err != nil {
			return err
		}
		amount, ok := new(big.Int).SetString(amounts[i], 10)
		if !ok {
			return fmt.Errorf("invalid token amount %q", amounts[i])
		}
		if err := b.AddTokenTransfer(token, recipient, amount); err != nil {
			return err
		}
	}
	return nil
}

func decodeBatch(input string) ([]batch.Transaction, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(input), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}

	// Accept full multiSend calldata as well as the bare packed batch.
	if packed, err := batch.UnpackMultiSendCall(raw); err == nil {
		raw = packed
	}
	return batch.DecodeMultiSend(raw)
}

func parseTier(name string) (batch.Tier, error) {
	switch tier := batch.Tier(strings.ToLower(name)); tier {
	case batch.TierSlow, batch.TierAverage, batch.TierFast:
		return tier, nil
	}
	return "", fmt.Errorf("unknown tier %q", name)
}
