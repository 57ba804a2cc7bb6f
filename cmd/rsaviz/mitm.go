package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/udisondev/rsaviz/internal/config"
	"github.com/udisondev/rsaviz/internal/dh"
)

func runMITM(mc config.MITM, args []string, out io.Writer, record func(dh.Exchange)) error {
	fs := flag.NewFlagSet("mitm", flag.ContinueOnError)
	fs.SetOutput(out)
	p := fs.Int64("p", mc.P, "prime modulus")
	g := fs.Int64("g", mc.G, "primitive root mod p")
	a := fs.Int64("a", mc.Alice, "Alice's private key, 0 for random")
	b := fs.Int64("b", mc.Bob, "Bob's private key, 0 for random")
	c := fs.Int64("c", mc.MalloryAlice, "Mallory's key towards Alice, 0 for random")
	d := fs.Int64("d", mc.MalloryBob, "Mallory's key towards Bob, 0 for random")
	msg := fs.String("msg", "", "message Alice sends to Bob")
	rewrite := fs.String("rewrite", "", "replace the message Mallory forwards")
	if err := fs.Parse(args); err != nil {
		return err
	}

	x, err := dh.Run(dh.PublicValues{P: *p, G: *g}, dh.PrivateValues{A: *a, B: *b, C: *c, D: *d})
	if err != nil {
		return fmt.Errorf("running exchange: %w", err)
	}
	record(x)
	renderExchange(out, x)

	if *msg == "" {
		return nil
	}

	var fn func(string) string
	if *rewrite != "" {
		fn = func(string) string { return *rewrite }
	}
	in, err := x.Relay(*msg, fn)
	if err != nil {
		return fmt.Errorf("relaying message: %w", err)
	}
	fmt.Fprintf(out, "\nAlice sent:     %q (%d bytes on the wire)\n", in.Sent, len(in.FromAlice))
	fmt.Fprintf(out, "Mallory read:   %q\n", in.Read)
	fmt.Fprintf(out, "Bob received:   %q (%d bytes on the wire)\n", in.Delivered, len(in.ToBob))
	if in.Tampered() {
		fmt.Fprintln(out, "Bob got a forged message and cannot tell")
	}
	return nil
}

func renderExchange(out io.Writer, x dh.Exchange) {
	pub, priv := x.Public, x.Private
	rows := [][2]string{
		{"p, g", fmt.Sprintf("%d, %d", pub.P, pub.G)},
		{"Alice sends g^a", fmt.Sprintf("%d^%d mod %d = %d", pub.G, priv.A, pub.P, x.AlicePublic)},
		{"Bob sends g^b", fmt.Sprintf("%d^%d mod %d = %d", pub.G, priv.B, pub.P, x.BobPublic)},
		{"Mallory to Alice g^c", fmt.Sprintf("%d^%d mod %d = %d", pub.G, priv.C, pub.P, x.MalloryToAlice)},
		{"Mallory to Bob g^d", fmt.Sprintf("%d^%d mod %d = %d", pub.G, priv.D, pub.P, x.MalloryToBob)},
		{"Alice's key", fmt.Sprint(x.AliceFinal)},
		{"Bob's key", fmt.Sprint(x.BobFinal)},
		{"Mallory-Alice key", fmt.Sprint(x.MalloryAlice)},
		{"Mallory-Bob key", fmt.Sprint(x.MalloryBob)},
		{"key without Mallory", fmt.Sprint(x.Honest)},
	}
	for _, r := range rows {
		fmt.Fprintf(out, "%-22s %s\n", r[0]+":", r[1])
	}

	verdict := "failed"
	if x.Success() {
		verdict = "succeeded"
	}
	fmt.Fprintf(out, "%s\nattack %s\n", strings.Repeat("-", 40), verdict)
}
