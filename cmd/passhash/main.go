package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/2beens/crossfield/pkg"

	log "github.com/sirupsen/logrus"
)

// passhash prints the bcrypt hash to put into CROSSFIELD_ADMIN_PASSWORD_HASH.
// The password is read from STDIN unless -password is given.
func main() {
	password := flag.String("password", "", "admin password, read from STDIN when empty")
	flag.Parse()

	if *password == "" {
		fmt.Fprint(os.Stderr, "password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			log.Fatalf("read password: %s", err)
		}
		*password = strings.TrimRight(line, "\r\n")
	}
	if *password == "" {
		log.Fatalln("empty password")
	}

	hash, err := pkg.HashPassword(*password)
	if err != nil {
		log.Fatalf("hash password: %s", err)
	}
	fmt.Println(hash)
}
