// modctl is the operator client for a running modhost ops endpoint.
//
// Usage:
//
//	modctl [-targets path] [-target name] [-addr host:port] [-token t] <command>
//
// Commands: status, services, mods, shapes, preview.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/peterhaneve/ONIMods-sub014/internal/lighting"
	"github.com/peterhaneve/ONIMods-sub014/internal/mods"
	"github.com/peterhaneve/ONIMods-sub014/internal/registry"
	"github.com/peterhaneve/ONIMods-sub014/internal/server"
)

func main() {
	targetsPath := flag.String("targets", "cmd/modctl/targets.toml", "path to targets.toml")
	targetName := flag.String("target", "", "named target from the targets file")
	addr := flag.String("addr", "", "ops endpoint address, overrides the targets file")
	token := flag.String("token", "", "bearer token, overrides the targets file")

	shapeID := flag.String("shape", "", "shape id for preview")
	originX := flag.Int("x", 0, "preview origin x")
	originY := flag.Int("y", 0, "preview origin y")
	radius := flag.Int("radius", 4, "preview radius")
	lux := flag.Int("lux", 1000, "preview lux")
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		fatalf("missing command (status|services|mods|shapes|preview)")
	}

	target, err := resolveTarget(*targetsPath, *targetName, *addr, *token)
	if err != nil {
		fatalf("%v", err)
	}
	client := newOpsClient(target)

	switch command {
	case "status":
		err = runStatus(client)
	case "services":
		err = runServices(client)
	case "mods":
		err = runMods(client)
	case "shapes":
		err = runShapes(client)
	case "preview":
		err = runPreview(client, server.PreviewRequest{
			OriginX: *originX,
			OriginY: *originY,
			Radius:  *radius,
			ShapeID: *shapeID,
			Lux:     *lux,
		})
	default:
		fatalf("unknown command %q (status|services|mods|shapes|preview)", command)
	}
	if err != nil {
		fatalf("%v", err)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "modctl: "+format+"\n", args...)
	os.Exit(1)
}

type opsClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newOpsClient(target targetConfig) *opsClient {
	return &opsClient{
		baseURL: "http://" + target.Addr,
		token:   target.Token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *opsClient) do(method, path string, body, out any) error {
	var payload *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		payload = bytes.NewReader(data)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var fail struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&fail)
		if fail.Error != "" {
			return fmt.Errorf("%s %s: %s (%s)", method, path, resp.Status, fail.Error)
		}
		return fmt.Errorf("%s %s: %s", method, path, resp.Status)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func runStatus(client *opsClient) error {
	var health struct {
		Status   string `json:"status"`
		HostID   string `json:"host_id"`
		UptimeMS int64  `json:"uptime_ms"`
	}
	if err := client.do(http.MethodGet, "/health", nil, &health); err != nil {
		return err
	}
	fmt.Printf("host %s status=%s uptime=%s\n",
		health.HostID, health.Status, (time.Duration(health.UptimeMS) * time.Millisecond).String())
	return nil
}

func runServices(client *opsClient) error {
	var payload struct {
		HostID   string                   `json:"host_id"`
		Services []registry.ServiceStatus `json:"services"`
	}
	if err := client.do(http.MethodGet, "/services", nil, &payload); err != nil {
		return err
	}
	for _, svc := range payload.Services {
		line := fmt.Sprintf("%s candidates=%d", svc.ServiceID, len(svc.Candidates))
		if svc.Elected {
			line += fmt.Sprintf(" elected=%s@%s", svc.ElectedModule, svc.ElectedVersion)
		} else {
			line += " elected=none"
		}
		fmt.Println(line)
	}
	return nil
}

func runMods(client *opsClient) error {
	var payload struct {
		Mods []mods.Metadata `json:"mods"`
	}
	if err := client.do(http.MethodGet, "/mods", nil, &payload); err != nil {
		return err
	}
	for _, meta := range payload.Mods {
		fmt.Printf("%s (%s) %s\n", meta.ID, meta.Name, meta.Description)
	}
	return nil
}

func runShapes(client *opsClient) error {
	var payload struct {
		Shapes []lighting.ShapeInfo `json:"shapes"`
	}
	if err := client.do(http.MethodGet, "/lighting/shapes", nil, &payload); err != nil {
		return err
	}
	for _, shape := range payload.Shapes {
		fmt.Printf("%-3d %s rays=%s grid_shape=%d\n", shape.Ordinal, shape.ID, shape.Rays, shape.GridShape)
	}
	return nil
}

func runPreview(client *opsClient, req server.PreviewRequest) error {
	if req.ShapeID == "" {
		return fmt.Errorf("preview requires -shape")
	}

	var result server.PreviewResult
	if err := client.do(http.MethodPost, "/lighting/preview", req, &result); err != nil {
		return err
	}
	fmt.Printf("shape %s lit %d cells\n", result.Shape, len(result.Cells))
	for _, cell := range result.Cells {
		fmt.Printf("  (%d,%d) lux=%d\n", cell.X, cell.Y, cell.Lux)
	}
	return nil
}
