// issue_token firma un JWT de servicio con JWT_SECRET/JWT_ISSUER de la configuración.
// La API no gestiona usuarios; el sistema que los administra emite los tokens con este formato.
//
// Uso: go run ./cmd/issue_token <user_id> <company_id> <rol> [minutos]
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jhoicas/lotes-api/pkg/config"
	"github.com/jhoicas/lotes-api/pkg/jwt"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Fprintln(os.Stderr, "Uso: issue_token <user_id> <company_id> <admin|bodeguero|vendedor> [minutos]")
		os.Exit(2)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	minutes := cfg.JWT.Expiration
	if len(os.Args) > 4 {
		if minutes, err = strconv.Atoi(os.Args[4]); err != nil || minutes <= 0 {
			fmt.Fprintln(os.Stderr, "minutos debe ser un entero positivo")
			os.Exit(2)
		}
	}
	switch os.Args[3] {
	case "admin", "bodeguero", "vendedor":
	default:
		fmt.Fprintf(os.Stderr, "rol desconocido: %s\n", os.Args[3])
		os.Exit(2)
	}

	tok, err := jwt.Generate(cfg.JWT.Secret, os.Args[1], os.Args[2], os.Args[3], cfg.JWT.Issuer, minutes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Firmar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
