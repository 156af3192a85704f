package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/rosterdev/roster-store/pkg/sdk"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		return
	}

	addr := os.Getenv("ROSTER_STORE_ADDR")
	if addr == "" {
		addr = "localhost:7401"
	}

	client, err := sdk.Connect(addr)
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", addr, err)
	}
	defer client.Close()

	command := strings.ToUpper(os.Args[1])
	args := os.Args[2:]

	switch command {
	case "LIST":
		students, err := client.ListStudents()
		if err != nil {
			log.Fatal(err)
		}
		printJSON(students)

	case "COUNT":
		students, err := client.ListStudents()
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(len(students))

	case "DEL":
		if len(args) < 1 {
			log.Fatal("Usage: roster DEL <index>")
		}
		index, err := strconv.Atoi(args[0])
		if err != nil {
			log.Fatalf("Index must be an integer, got %q", args[0])
		}
		if err := client.DeleteStudent(index); err != nil {
			log.Fatal(err)
		}
		fmt.Println("OK")

	case "CRED":
		if len(args) < 1 {
			log.Fatal("Usage: roster CRED <email>")
		}
		cred, err := client.Credential(args[0])
		if err != nil {
			log.Fatal(err)
		}
		printJSON(cred)

	case "SESSION":
		email, err := client.Session()
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(email)

	case "CLEAR_SESSION":
		if err := client.ClearSession(); err != nil {
			log.Fatal(err)
		}
		fmt.Println("OK")

	case "SUMMARY":
		summary, err := client.Summary()
		if err != nil {
			log.Fatal(err)
		}
		printJSON(summary)

	case "PING":
		if err := client.Ping(); err != nil {
			log.Fatal(err)
		}
		fmt.Println("PONG")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
	}
}

func printUsage() {
	fmt.Println("Roster CLI - Interface for roster-store")
	fmt.Println("\nUsage:")
	fmt.Println("  roster LIST")
	fmt.Println("  roster COUNT")
	fmt.Println("  roster DEL <index>")
	fmt.Println("  roster CRED <email>")
	fmt.Println("  roster SESSION")
	fmt.Println("  roster CLEAR_SESSION")
	fmt.Println("  roster SUMMARY")
	fmt.Println("  roster PING")
	fmt.Println("\nEnvironment Variables:")
	fmt.Println("  ROSTER_STORE_ADDR    Address of the store (default: localhost:7401)")
	fmt.Println("  ROSTER_DISABLE_TLS   Set to true to disable TLS")
}

func printJSON(v any) {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(v)
		return
	}
	fmt.Println(string(bytes))
}
