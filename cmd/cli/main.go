package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"
)

var client = &http.Client{Timeout: 15 * time.Second}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "auth":
		err = handleAuth(args)
	case "doctors":
		err = handleDoctors(args)
	case "specialties":
		err = handleSpecialties(args)
	case "appointments":
		err = handleAppointments(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(1)
	}
}

func handleAuth(args []string) error {
	if len(args) < 1 {
		fmt.Println("Usage: citas auth <register|login|logout|who>")
		return nil
	}

	switch args[0] {
	case "register":
		return registerPatient(args[1:])
	case "login":
		return login(args[1:])
	case "logout":
		_ = os.Remove(tokenFile())
		fmt.Println("✓ Logged out")
		return nil
	case "who":
		token := loadToken()
		if token == "" {
			fmt.Println("Not logged in")
			return nil
		}
		fmt.Printf("✓ Logged in (token: %.20s...)\n", token)
		return nil
	default:
		return fmt.Errorf("unknown auth command: %s", args[0])
	}
}

func handleDoctors(args []string) error {
	if len(args) < 1 {
		fmt.Println("Usage: citas doctors <list|agenda>")
		return nil
	}

	switch args[0] {
	case "list":
		var doctors []map[string]any
		if err := call(http.MethodGet, "/doctors", nil, &doctors); err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSPECIALTY\tEMAIL")
		for _, d := range doctors {
			fmt.Fprintf(w, "%v\t%v %v\t%v\t%v\n", d["user_id"], d["name"], d["surname"], str(d["specialty"]), d["email"])
		}
		return w.Flush()
	case "agenda":
		return printAppointments("/doctors/me/appointments")
	default:
		return fmt.Errorf("unknown doctors command: %s", args[0])
	}
}

func handleSpecialties(args []string) error {
	if len(args) < 1 {
		fmt.Println("Usage: citas specialties <list|create>")
		return nil
	}

	switch args[0] {
	case "list":
		var specialties []map[string]any
		if err := call(http.MethodGet, "/specialties", nil, &specialties); err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME")
		for _, s := range specialties {
			fmt.Fprintf(w, "%v\t%v\n", s["id"], s["name"])
		}
		return w.Flush()
	case "create":
		fs := flag.NewFlagSet("specialties create", flag.ExitOnError)
		name := fs.String("name", "", "specialty name")
		_ = fs.Parse(args[1:])
		if *name == "" {
			fs.PrintDefaults()
			return errors.New("name is required")
		}
		var created map[string]any
		if err := call(http.MethodPost, "/specialties", map[string]string{"name": *name}, &created); err != nil {
			return err
		}
		fmt.Printf("✓ Specialty created: %v (id %v)\n", created["name"], created["id"])
		return nil
	default:
		return fmt.Errorf("unknown specialties command: %s", args[0])
	}
}

func handleAppointments(args []string) error {
	if len(args) < 1 {
		fmt.Println("Usage: citas appointments <list|create|delete>")
		return nil
	}

	switch args[0] {
	case "list":
		return printAppointments("/appointments")
	case "create":
		return createAppointment(args[1:])
	case "delete":
		if len(args) < 2 {
			return errors.New("usage: citas appointments delete <id>")
		}
		if _, err := strconv.ParseInt(args[1], 10, 64); err != nil {
			return fmt.Errorf("invalid appointment id %q", args[1])
		}
		if err := call(http.MethodDelete, "/appointments/"+args[1], nil, nil); err != nil {
			return err
		}
		fmt.Printf("✓ Appointment %s deleted\n", args[1])
		return nil
	default:
		return fmt.Errorf("unknown appointments command: %s", args[0])
	}
}

func registerPatient(args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "patient email")
	password := fs.String("password", "", "password (min 8 characters)")
	name := fs.String("name", "", "first name")
	surname := fs.String("surname", "", "last name")
	birthdate := fs.String("birthdate", "", "birthdate, YYYY-MM-DD (optional)")
	phone := fs.String("phone", "", "phone (optional)")
	_ = fs.Parse(args)

	if *email == "" || *password == "" || *name == "" || *surname == "" {
		fs.PrintDefaults()
		return errors.New("email, password, name and surname are required")
	}

	payload := map[string]string{
		"email":     *email,
		"password":  *password,
		"name":      *name,
		"surname":   *surname,
		"birthdate": *birthdate,
		"phone":     *phone,
	}
	var result map[string]any
	if err := call(http.MethodPost, "/patients/register", payload, &result); err != nil {
		return err
	}
	fmt.Printf("✓ Patient registered: %s (user %v)\n", *email, result["user_id"])
	return nil
}

func login(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password")
	_ = fs.Parse(args)

	if *email == "" || *password == "" {
		fs.PrintDefaults()
		return errors.New("email and password are required")
	}

	var result struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	if err := call(http.MethodPost, "/login", map[string]string{"email": *email, "password": *password}, &result); err != nil {
		return err
	}
	if err := saveToken(result.Token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	fmt.Printf("✓ Logged in as %s (%s)\n", *email, result.Role)
	return nil
}

func createAppointment(args []string) error {
	fs := flag.NewFlagSet("appointments create", flag.ExitOnError)
	doctor := fs.Int64("doctor", 0, "doctor user id")
	specialty := fs.Int64("specialty", 0, "specialty id (defaults to the doctor's)")
	at := fs.String("at", "", "date and time, e.g. 2025-03-01T10:00")
	reason := fs.String("reason", "", "reason for the visit")
	kind := fs.String("type", "GENERAL", "GENERAL or URGENT")
	_ = fs.Parse(args)

	if *doctor == 0 || *at == "" || *reason == "" {
		fs.PrintDefaults()
		return errors.New("doctor, at and reason are required")
	}

	payload := map[string]any{
		"doctor_user_id": *doctor,
		"scheduled_at":   *at,
		"reason":         *reason,
		"type":           *kind,
	}
	if *specialty != 0 {
		payload["specialty_id"] = *specialty
	}
	var result struct {
		CitaID int64 `json:"cita_id"`
	}
	if err := call(http.MethodPost, "/appointments", payload, &result); err != nil {
		return err
	}
	fmt.Printf("✓ Appointment %d booked\n", result.CitaID)
	return nil
}

func printAppointments(path string) error {
	var appointments []map[string]any
	if err := call(http.MethodGet, path, nil, &appointments); err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWHEN\tTYPE\tPATIENT\tDOCTOR\tSPECIALTY\tREASON")
	for _, a := range appointments {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\t%v\t%v\n",
			a["id"], a["scheduled_at"], a["kind"], a["patient_name"], a["doctor_name"], str(a["specialty"]), a["reason"])
	}
	return w.Flush()
}

// call sends a JSON request to the API and decodes the response into out
func call(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, apiURL()+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := loadToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error == "" {
			apiErr.Error = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, apiErr.Error)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func str(v any) any {
	if v == nil {
		return "-"
	}
	return v
}

func apiURL() string {
	if url := os.Getenv("CITAS_API"); url != "" {
		return url
	}
	return "http://localhost:8080/api"
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".citas", "token")
}

func saveToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(tokenFile()), 0o700); err != nil {
		return err
	}
	return os.WriteFile(tokenFile(), []byte(token), 0o600)
}

func loadToken() string {
	data, _ := os.ReadFile(tokenFile())
	return string(bytes.TrimSpace(data))
}

func printUsage() {
	fmt.Print(`citas CLI

Usage:
  citas <command> [options]

Commands:
  auth          Authentication (register, login, logout, who)
  doctors       Doctors (list, agenda)
  specialties   Specialties (list, create)
  appointments  Appointments (list, create, delete)
  help          Show this help message

Environment Variables:
  CITAS_API    API endpoint (default: http://localhost:8080/api)

Examples:
  citas auth register -email ana@example.com -password Secret123 -name Ana -surname Ruiz
  citas auth login -email ana@example.com -password Secret123
  citas doctors list
  citas appointments create -doctor 2 -at 2025-03-01T10:00 -reason "chest pain" -type URGENT
`)
}
