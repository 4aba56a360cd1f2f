// devtoken emite un JWT firmado con JWT_SECRET para probar la API en local.
// El servicio no autentica usuarios; en producción los tokens los emite el proveedor de identidad.
//
// Uso: go run ./cmd/devtoken <rol> [actor_id]
// Roles: manufacturer, transporter, lab, admin, consumer.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
	"github.com/jhoicas/ecotrace-api/pkg/config"
	"github.com/jhoicas/ecotrace-api/pkg/jwt"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "uso: devtoken <rol> [actor_id]")
		os.Exit(2)
	}
	role := os.Args[1]
	if !entity.ValidRole(role) {
		fmt.Fprintf(os.Stderr, "rol inválido: %q\n", role)
		os.Exit(2)
	}
	actorID := uuid.New().String()
	if len(os.Args) > 2 {
		actorID = os.Args[2]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	if cfg.App.Env == "production" {
		fmt.Fprintln(os.Stderr, "devtoken no se usa con APP_ENV=production")
		os.Exit(1)
	}

	tok, err := jwt.Generate(cfg.JWT.Secret, actorID, role, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "actor_id=%s role=%s\n", actorID, role)
	fmt.Println(tok)
}
