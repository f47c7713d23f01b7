package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
	log "github.com/sirupsen/logrus"
)

func main() {
	mode := flag.String("mode", "api", "Query mode: 'api' to query the ns-api server, 'direct' to query ClickHouse directly.")
	apiAddr := flag.String("api", "http://localhost:8080", "Base URL of the ns-api server.")
	class := flag.String("class", "", "Only connections of this class (complete, reset, open, pre_capture).")
	source := flag.String("source", "", "Only rows from this capture (direct mode).")
	chAddr := flag.String("clickhouse", "localhost:19000", "ClickHouse address (direct mode).")
	flag.Parse()

	log.Infof("Running in '%s' mode.", *mode)

	switch *mode {
	case "api":
		queryViaAPI(*apiAddr, *class)
	case "direct":
		directQueryClickHouse(*chAddr, *source, *class)
	default:
		log.Fatalf("Invalid mode: %s. Use 'api' or 'direct'.", *mode)
	}
}

// queryViaAPI prints the summary and the (filtered) connection list served by ns-api.
func queryViaAPI(base, class string) {
	getAndPrint(base + "/api/v1/summary")

	connURL := base + "/api/v1/connections"
	if class != "" {
		connURL += "?class=" + url.QueryEscape(class)
	}
	getAndPrint(connURL)
}

func getAndPrint(u string) {
	log.Infof("GET %s", u)
	resp, err := http.Get(u)
	if err != nil {
		log.Fatalf("Error sending request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("Error reading response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("API returned non-200 status code: %d\nResponse: %s", resp.StatusCode, string(respBody))
	}

	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, respBody, "", "  "); err != nil {
		log.Warn("Could not prettify JSON, printing raw response:")
		fmt.Println(string(respBody))
		return
	}
	fmt.Println(prettyJSON.String())
}

// directQueryClickHouse prints per-capture, per-class totals from the tcp_connections table.
func directQueryClickHouse(addr, source, class string) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: "default",
			Username: "default",
		},
	})
	if err != nil {
		log.Fatalf("Error connecting to ClickHouse: %v", err)
	}
	defer conn.Close()

	var where []string
	var args []interface{}
	if source != "" {
		where = append(where, "Source = ?")
		args = append(args, source)
	}
	if class != "" {
		where = append(where, "Class = ?")
		args = append(args, class)
	}

	var query strings.Builder
	query.WriteString(`
		SELECT
			Source,
			Class,
			COUNT(*) AS Connections,
			SUM(PacketsAToB + PacketsBToA) AS TotalPackets,
			SUM(BytesAToB + BytesBToA) AS TotalBytes,
			AVG(Duration) AS MeanDuration
		FROM tcp_connections
`)
	if len(where) > 0 {
		query.WriteString("\t\tWHERE " + strings.Join(where, " AND ") + "\n")
	}
	query.WriteString("\t\tGROUP BY Source, Class\n\t\tORDER BY Source, Class\n")

	rows, err := conn.Query(context.Background(), query.String(), args...)
	if err != nil {
		log.Fatalf("Error executing query: %v", err)
	}
	defer rows.Close()

	var found bool
	for rows.Next() {
		found = true
		var (
			src, cls              string
			connections           uint64
			totalPackets, totalBy uint64
			meanDuration          float64
		)
		if err := rows.Scan(&src, &cls, &connections, &totalPackets, &totalBy, &meanDuration); err != nil {
			log.Errorf("Error scanning row: %v", err)
			continue
		}
		fmt.Printf("%s [%s]\n", src, cls)
		fmt.Printf("  Connections: %d\n", connections)
		fmt.Printf("  TotalPackets: %d\n", totalPackets)
		fmt.Printf("  TotalBytes: %d\n", totalBy)
		fmt.Printf("  MeanDuration: %.6f s\n", meanDuration)
		fmt.Println("---------------------")
	}

	if !found {
		log.Info("No data found for the specified criteria.")
	}
	if err := rows.Err(); err != nil {
		log.Errorf("An error occurred during row iteration: %v", err)
	}
}
