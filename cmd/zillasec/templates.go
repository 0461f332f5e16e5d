package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codelie14/zillasec/internal/models"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage analysis instruction templates",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates",
	Args:  cobra.NoArgs,
	RunE:  runTemplatesList,
}

var templatesAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesAdd,
}

var templatesDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesDelete,
}

var (
	templateListCategory string
	templateCategory     string
	templateVariant      string
	templateDescription  string
	templateContent      string
	templateFile         string
	templateDefault      bool
)

func init() {
	templatesListCmd.Flags().StringVar(&templateListCategory, "category", "", "Only list this category")

	templatesAddCmd.Flags().StringVar(&templateCategory, "category", string(models.TemplateCategoryAnalysis), "Category: analysis, report, alert or custom")
	templatesAddCmd.Flags().StringVar(&templateVariant, "variant", string(models.SchemaRiskSummary), "Reply schema the instruction asks for")
	templatesAddCmd.Flags().StringVar(&templateDescription, "description", "", "Short description")
	templatesAddCmd.Flags().StringVar(&templateContent, "content", "", "Instruction text")
	templatesAddCmd.Flags().StringVar(&templateFile, "file", "", "Read the instruction text from a file")
	templatesAddCmd.Flags().BoolVar(&templateDefault, "default", false, "Make this the default template of its category")

	templatesCmd.AddCommand(templatesListCmd, templatesAddCmd, templatesDeleteCmd)
}

func runTemplatesList(cmd *cobra.Command, args []string) error {
	list, err := application.TemplateService.List(cmd.Context(), models.TemplateCategory(templateListCategory))
	if err != nil {
		return err
	}
	return printJSON(list)
}

func runTemplatesAdd(cmd *cobra.Command, args []string) error {
	content := templateContent
	if templateFile != "" {
		data, err := os.ReadFile(templateFile)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", templateFile, err)
		}
		content = string(data)
	}

	template := &models.InstructionTemplate{
		Name:        args[0],
		Description: templateDescription,
		Category:    models.TemplateCategory(templateCategory),
		Type:        models.SchemaVariant(templateVariant),
		Content:     content,
		IsDefault:   templateDefault,
	}
	if err := application.TemplateService.Create(cmd.Context(), template); err != nil {
		return err
	}
	return printJSON(template)
}

func runTemplatesDelete(cmd *cobra.Command, args []string) error {
	if err := application.TemplateService.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted template %s\n", args[0])
	return nil
}
