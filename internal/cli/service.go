package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"

	"meetflow/internal/config"
	"meetflow/internal/server"
	"meetflow/pkg/logger"
)

var (
	installCmd = &cobra.Command{
		Use:   "install",
		Short: "Install meetflow as a background service",
		RunE:  runInstall,
	}

	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the installed meetflow service",
		RunE:  runStart,
	}

	stopCmd = &cobra.Command{
		Use:   "stop",
		Short: "Stop the installed meetflow service",
		RunE:  runStop,
	}

	uninstallCmd = &cobra.Command{
		Use:   "uninstall",
		Short: "Uninstall the meetflow service",
		RunE:  runUninstall,
	}
)

func init() {
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(uninstallCmd)
}

// program adapts server.Server to kardianos/service's Start/Stop
// contract.
type program struct {
	srv *server.Server
}

func (p *program) Start(s service.Service) error {
	go p.run()
	return nil
}

func (p *program) run() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("meetflow service: load config: %v", err)
	}
	logger.Init(cfg.LogLevel)

	srv, err := server.Build(cfg)
	if err != nil {
		log.Fatalf("meetflow service: build server: %v", err)
	}
	p.srv = srv

	if err := srv.Run(); err != nil {
		log.Printf("meetflow service: server exited: %v", err)
	}
}

func (p *program) Stop(s service.Service) error {
	if p.srv == nil {
		return nil
	}
	return p.srv.Shutdown(context.Background())
}

func serviceConfig() *service.Config {
	ex, err := os.Executable()
	if err != nil {
		log.Fatal(err)
	}
	return &service.Config{
		Name:        "meetflow",
		DisplayName: "Meetflow Job Orchestration Service",
		Description: "Ingests and processes meeting recordings through transcription, diarization, alignment, summarization, and export.",
		Executable:  ex,
		Arguments:   []string{"serve"},
	}
}

func runInstall(cmd *cobra.Command, args []string) error {
	s, err := service.New(&program{}, serviceConfig())
	if err != nil {
		return err
	}
	if err := s.Install(); err != nil {
		return err
	}
	fmt.Println("meetflow service installed.")
	return nil
}

func runStart(cmd *cobra.Command, args []string) error {
	s, err := service.New(&program{}, serviceConfig())
	if err != nil {
		return err
	}
	if err := s.Start(); err != nil {
		return err
	}
	fmt.Println("meetflow service started.")
	return nil
}

func runStop(cmd *cobra.Command, args []string) error {
	s, err := service.New(&program{}, serviceConfig())
	if err != nil {
		return err
	}
	if err := s.Stop(); err != nil {
		return err
	}
	fmt.Println("meetflow service stopped.")
	return nil
}

func runUninstall(cmd *cobra.Command, args []string) error {
	s, err := service.New(&program{}, serviceConfig())
	if err != nil {
		return err
	}
	if err := s.Uninstall(); err != nil {
		return err
	}
	fmt.Println("meetflow service uninstalled.")
	return nil
}
