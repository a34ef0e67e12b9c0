package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/devotional/internal/devotional"
	"github.com/mesh-intelligence/devotional/pkg/types"
)

// keyFlags are the reader profile flags shared by devotional and lookup.
type keyFlags struct {
	verse     string
	verseText string
	age       string
	gender    string
	lifeStage string
	language  string
	church    string
	style     string
}

func (k *keyFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&k.verse, "verse", "", "verse reference (default: today's scheduled verse)")
	f.StringVar(&k.verseText, "verse-text", "", "verse text when --verse is given")
	f.StringVar(&k.age, "age", "adult", "age range: teens, university, adult, senior, 13-17 ... or an age")
	f.StringVar(&k.gender, "gender", "male", "gender: male, female, other")
	f.StringVar(&k.lifeStage, "life-stage", "general", "life stage: general, new_beginnings, struggling, transitions")
	f.StringVar(&k.language, "language", "en", "BCP 47 language code")
	f.StringVar(&k.church, "church", "", "church id (default: global)")
	f.StringVar(&k.style, "style", "casual", "content style: casual or academic")
}

func (k keyFlags) request() devotional.Request {
	return devotional.Request{
		VerseReference: k.verse,
		VerseText:      k.verseText,
		AgeRange:       k.age,
		Gender:         k.gender,
		LifeStage:      k.lifeStage,
		Language:       k.language,
		ChurchID:       k.church,
		Style:          k.style,
	}
}

// classify maps service errors onto exit codes.
func classify(err error) error {
	switch {
	case devotional.IsClientError(err), errors.Is(err, types.ErrNoVerseScheduled):
		return userError(err)
	default:
		return sysError(err)
	}
}

func newDevotionalCmd(st *state) *cobra.Command {
	var k keyFlags
	cmd := &cobra.Command{
		Use:   "devotional",
		Short: "Get or generate a devotional",
		Long: "Return the cached devotional for the reader profile, generating and\n" +
			"caching it on a miss. Without --verse, today's scheduled verse is used.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.openApp()
			if err != nil {
				return err
			}
			defer a.close()

			svc, err := st.service(a)
			if err != nil {
				return err
			}
			res, err := svc.Devotional(cmd.Context(), k.request())
			if err != nil {
				return classify(err)
			}
			return st.emit(res, func(w io.Writer) { printDevotional(w, res) })
		},
	}
	k.register(cmd)
	return cmd
}

func printDevotional(w io.Writer, res *devotional.Result) {
	source := "generated"
	switch {
	case res.CacheHit:
		source = "cached"
	case res.Degraded:
		source = "default content"
	}
	fmt.Fprintf(w, "%s (%s)\n", res.Key.VerseReference, source)
	if res.Content.VerseText != "" {
		fmt.Fprintf(w, "%s\n", res.Content.VerseText)
	}
	fmt.Fprintf(w, "\nReflection\n%s\n", res.Content.Reflection)
	if len(res.Content.Application) > 0 {
		fmt.Fprintln(w, "\nApplication")
		for _, item := range res.Content.Application {
			fmt.Fprintf(w, "- %s\n", item)
		}
	}
	fmt.Fprintf(w, "\nPrayer\n%s\n", res.Content.Prayer)
	if res.Content.ImageURL != "" {
		fmt.Fprintf(w, "\nImage: %s\n", res.Content.ImageURL)
	}
}
