package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/annel0/voxel-world/internal/app"
	"github.com/annel0/voxel-world/internal/config"
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/annel0/voxel-world/internal/world/block"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:   "worldgen",
		Usage:  "офлайн генерация и проверка воксельного мира",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "путь к YAML конфигурации", EnvVars: []string{"VOXEL_CONFIG"}},
			&cli.UintFlag{Name: "seed", Usage: "переопределить сид мира"},
			&cli.IntFlag{Name: "radius", Aliases: []string{"r"}, Value: 1, Usage: "радиус (в чанках) вокруг центра"},
			&cli.IntFlag{Name: "cx", Usage: "X центрального чанка"},
			&cli.IntFlag{Name: "cz", Usage: "Z центрального чанка"},
		},
		Commands: []*cli.Command{
			{
				Name:   "digest",
				Usage:  "вывести хеши сгенерированных чанков",
				Action: digestAction,
			},
			{
				Name:  "export",
				Usage: "сохранить чанки в сжатый снимок",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Required: true, Usage: "файл снимка"},
				},
				Action: exportAction,
			},
			{
				Name:  "inspect",
				Usage: "показать содержимое снимка",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "in", Aliases: []string{"i"}, Required: true, Usage: "файл снимка"},
				},
				Action: inspectAction,
			},
			{
				Name:  "simulate",
				Usage: "прогнать симуляцию без сети и вывести итоговое состояние",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "frames", Value: 600, Usage: "число кадров"},
					&cli.Float64Flag{Name: "dt", Value: 1.0 / 60, Usage: "длительность кадра, с"},
				},
				Action: simulateAction,
			},
		},
	}
}

// loadConfig читает конфигурацию и применяет глобальные флаги
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("seed") {
		cfg.World.Seed = uint32(c.Uint("seed"))
	}
	return cfg, nil
}

// generateArea синхронно генерирует квадрат чанков вокруг (cx, cz)
func generateArea(c *cli.Context, params world.Params) ([]*world.Chunk, error) {
	radius := c.Int("radius")
	if radius < 0 {
		return nil, fmt.Errorf("radius не может быть отрицательным")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	center := vec.Vec2{X: c.Int("cx"), Z: c.Int("cz")}
	var chunks []*world.Chunk
	for x := center.X - radius; x <= center.X+radius; x++ {
		for z := center.Z - radius; z <= center.Z+radius; z++ {
			ch := world.NewChunk(vec.Vec2{X: x, Z: z}, params)
			ch.Generate(c.Context)
			chunks = append(chunks, ch)
		}
	}
	return chunks, nil
}

func digestAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	chunks, err := generateArea(c, cfg.World.Params)
	if err != nil {
		return err
	}

	for _, ch := range chunks {
		fmt.Fprintf(c.App.Writer, "%d,%d\t%016x\t%d инстансов\n",
			ch.Coords().X, ch.Coords().Z, ch.Digest(), ch.InstanceCount())
	}
	return nil
}

func exportAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	chunks, err := generateArea(c, cfg.World.Params)
	if err != nil {
		return err
	}

	f, err := os.Create(c.String("out"))
	if err != nil {
		return err
	}
	defer f.Close()

	if err := world.WriteSnapshot(f, cfg.World.Seed, chunks); err != nil {
		return fmt.Errorf("запись снимка: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "✅ %d чанков записано в %s\n", len(chunks), c.String("out"))
	return nil
}

func inspectAction(c *cli.Context) error {
	f, err := os.Open(c.String("in"))
	if err != nil {
		return err
	}
	defer f.Close()

	seed, chunks, err := world.ReadSnapshot(f)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "seed=%d, чанков: %d\n", seed, len(chunks))
	for _, s := range chunks {
		counts := make(map[block.BlockID]int)
		for _, id := range s.IDs {
			counts[id]++
		}

		ids := make([]block.BlockID, 0, len(counts))
		for id := range counts {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		fmt.Fprintf(c.App.Writer, "%d,%d\t%dx%d\t%016x\t", s.Coords.X, s.Coords.Z, s.Size.Width, s.Size.Height, s.Digest())
		for _, id := range ids {
			fmt.Fprintf(c.App.Writer, " %s=%d", id, counts[id])
		}
		fmt.Fprintln(c.App.Writer)
	}
	return nil
}

func simulateAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	cfg.World.AsyncLoading = false

	sim, err := app.NewFromConfig(cfg, nil)
	if err != nil {
		return err
	}

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	for i := 0; i < c.Int("frames"); i++ {
		sim.Frame(ctx, c.Float64("dt"))
	}

	st := sim.Status()
	fmt.Fprintf(c.App.Writer, "кадров=%d шагов=%d позиция=(%.3f, %.3f, %.3f) на земле=%v чанков=%d\n",
		st.Frame, st.Steps, st.Position.X(), st.Position.Y(), st.Position.Z(), st.OnGround, st.LoadedChunks)
	return nil
}
